package aiwash

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Engine assigns one of the three labels to a sentence using a two-stage
// decision: a fast lexical gate that rejects obvious boilerplate without an
// embedding call, then centroid-similarity scoring with optional rule boosts
// and a margin tie-break. For a fixed CentroidSet and Config the engine is a
// pure function of the sentence text.
type Engine struct {
	embedding EmbeddingClient
	centroids *CentroidSet
	cfg       Config
}

// NewEngine creates an Engine. The configuration is validated up front;
// a bad configuration never classifies a single sentence.
func NewEngine(embedding EmbeddingClient, centroids *CentroidSet, cfg Config) (*Engine, error) {
	if embedding == nil {
		return nil, errors.New("embedding client is required")
	}
	if centroids == nil {
		return nil, &ReferenceDataError{Reason: "no centroid set provided"}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &Engine{embedding: embedding, centroids: centroids, cfg: cfg}, nil
}

// Config returns the engine's effective configuration with defaults applied.
func (e *Engine) Config() Config { return e.cfg }

// Classify labels a single sentence.
//
// Stage 0 (gate): with TwoStageGate enabled, sentences below MinTokens or
// matching boilerplate/list-density heuristics are rejected as Irrelevant
// immediately, with no embedding call.
//
// Otherwise the sentence is embedded and scored against the centroids,
// boosts are applied when RuleBoosts is on, and the label is picked by the
// margin rule or strict argmax. Embedding failures surface as *EmbeddingError.
func (e *Engine) Classify(ctx context.Context, sent Sentence) (ClassificationRecord, error) {
	text := strings.TrimSpace(sent.Text)
	rec := ClassificationRecord{Text: text, File: sent.File, Line: sent.Line}

	if e.cfg.TwoStageGate && e.gateRejects(text) {
		rec.Label = LabelIrrelevant
		rec.Gated = true
		rec.Scores = ScoreVector{Irrelevant: 1}
		return rec, nil
	}

	if text == "" {
		return rec, &EmbeddingError{Text: sent.Text, Err: errors.New("empty normalized text")}
	}

	emb, err := e.embedding.GenerateEmbedding(ctx, text)
	if err != nil {
		return rec, &EmbeddingError{Text: text, Err: err}
	}
	scores, err := e.centroids.Similarity(emb)
	if err != nil {
		return rec, &EmbeddingError{Text: text, Err: err}
	}

	if e.cfg.RuleBoosts {
		scores = e.applyBoosts(text, scores)
	}

	rec.Scores = scores
	rec.Label = decide(text, scores, e.cfg)
	return rec, nil
}

// gateRejects implements the Stage-0 fast rejection heuristics.
func (e *Engine) gateRejects(text string) bool {
	if tokenCount(text) < e.cfg.MinTokens {
		return true
	}
	if isBoilerplateLine(text) {
		return true
	}
	return listDense(text, e.cfg.ListCommaRatio)
}

// applyBoosts adds the configured lexical-cue increments. Boosted scores may
// leave the cosine range; only ordering and margin matter downstream.
func (e *Engine) applyBoosts(text string, s ScoreVector) ScoreVector {
	if hasActionCue(text) || hasNumericCue(text) {
		s.Actionable += e.cfg.BoostActionable
	}
	if hasModalCue(text) {
		s.Speculative += e.cfg.BoostSpeculative
	}
	if s.Actionable < e.cfg.WeakScore && s.Speculative < e.cfg.WeakScore && listSoft(text) {
		s.Irrelevant += e.cfg.EpsIrrelevant
	}
	return s
}

// decide selects the label for a scored, ungated sentence. Within Tau of an
// Actionable/Speculative tie the lexical cues break it; otherwise the
// strictly greatest score wins, with Irrelevant participating only when the
// gate is disabled (an enabled gate owns all Irrelevant assignments).
func decide(text string, s ScoreVector, cfg Config) Label {
	if math.Abs(s.Actionable-s.Speculative) < cfg.Tau {
		switch {
		case hasModalCue(text):
			return LabelSpeculative
		case hasActionCue(text):
			return LabelActionable
		case s.Speculative > s.Actionable:
			return LabelSpeculative
		default:
			return LabelActionable
		}
	}
	if !cfg.TwoStageGate && s.Irrelevant > s.Actionable && s.Irrelevant > s.Speculative {
		return LabelIrrelevant
	}
	if s.Actionable >= s.Speculative {
		return LabelActionable
	}
	return LabelSpeculative
}

// ReplayDecision re-runs the decision rule on a stored record. A record is
// internally consistent exactly when this reproduces its stored label; the
// batch artifacts are auditable on that basis.
func ReplayDecision(rec ClassificationRecord, cfg Config) Label {
	cfg.applyDefaults()
	if rec.Gated {
		return LabelIrrelevant
	}
	return decide(rec.Text, rec.Scores, cfg)
}
