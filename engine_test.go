package aiwash

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finwatch/aiwash/pkg/testutil"
)

// testCentroids returns an orthogonal three-axis set so a mock embedding's
// components map directly onto per-label similarity.
func testCentroids(t *testing.T) *CentroidSet {
	t.Helper()
	set, err := NewCentroidSet(map[Label][]float32{
		LabelActionable:  {1, 0, 0},
		LabelSpeculative: {0, 1, 0},
		LabelIrrelevant:  {0, 0, 1},
	}, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return set
}

func fixedEmbedding(vec []float32) *testutil.MockEmbeddingClient {
	return &testutil.MockEmbeddingClient{
		GenerateEmbeddingFunc: func(ctx context.Context, text string) ([]float32, error) {
			return vec, nil
		},
	}
}

func TestClassifyGateRejectsListBoilerplate(t *testing.T) {
	mock := fixedEmbedding([]float32{1, 0, 0})
	engine, err := NewEngine(mock, testCentroids(t), DefaultConfig())
	require.NoError(t, err)

	text := "We offer consulting services including cloud, analytics, and AI solutions, as well as data security, privacy, and compliance offerings."
	rec, err := engine.Classify(context.Background(), Sentence{Text: text})
	require.NoError(t, err)

	assert.Equal(t, LabelIrrelevant, rec.Label)
	assert.True(t, rec.Gated)
	assert.Equal(t, 0, mock.Calls(), "gated sentences must not be embedded")
}

func TestClassifyGateRejectsShortAndBoilerplate(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"below min tokens", "AI improves results."},
		{"page number", "17"},
		{"page marker", "- 42 -"},
	}
	mock := fixedEmbedding([]float32{1, 0, 0})
	engine, err := NewEngine(mock, testCentroids(t), DefaultConfig())
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := engine.Classify(context.Background(), Sentence{Text: tt.text})
			require.NoError(t, err)
			assert.Equal(t, LabelIrrelevant, rec.Label)
			assert.True(t, rec.Gated)
		})
	}
	assert.Equal(t, 0, mock.Calls())
}

func TestClassifyDeployedDisclosureIsActionable(t *testing.T) {
	mock := fixedEmbedding([]float32{0.9, 0.3, 0.1})
	engine, err := NewEngine(mock, testCentroids(t), DefaultConfig())
	require.NoError(t, err)

	text := "We deployed machine learning models that reduced fulfillment costs by 30%."
	rec, err := engine.Classify(context.Background(), Sentence{Text: text})
	require.NoError(t, err)

	assert.Equal(t, LabelActionable, rec.Label)
	assert.False(t, rec.Gated)
	assert.Greater(t, rec.Scores.Actionable, rec.Scores.Speculative)
	assert.Equal(t, 1, mock.Calls())
}

func TestClassifyMarginTieBreak(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Label
	}{
		{
			// Modal cue wins the tie even when an operational verb is present.
			"modal cue",
			"We may expand our machine learning capabilities next year.",
			LabelSpeculative,
		},
		{
			"action cue",
			"We deployed machine learning across fulfillment operations worldwide.",
			LabelActionable,
		},
	}
	cfg := DefaultConfig()
	cfg.Tau = 0.9
	cfg.RuleBoosts = false

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := NewEngine(fixedEmbedding([]float32{0.5, 0.5, 0.1}), testCentroids(t), cfg)
			require.NoError(t, err)
			rec, err := engine.Classify(context.Background(), Sentence{Text: tt.text})
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.Label)
		})
	}
}

func TestClassifyBoostsShiftScores(t *testing.T) {
	base := []float32{0.5, 0.5, 0.1}
	text := "We deployed machine learning models that reduced fulfillment costs by 30%."

	boosted, err := NewEngine(fixedEmbedding(base), testCentroids(t), DefaultConfig())
	require.NoError(t, err)
	plainCfg := DefaultConfig()
	plainCfg.RuleBoosts = false
	plain, err := NewEngine(fixedEmbedding(base), testCentroids(t), plainCfg)
	require.NoError(t, err)

	recBoosted, err := boosted.Classify(context.Background(), Sentence{Text: text})
	require.NoError(t, err)
	recPlain, err := plain.Classify(context.Background(), Sentence{Text: text})
	require.NoError(t, err)

	assert.InDelta(t, recPlain.Scores.Actionable+DefaultBoostActionable, recBoosted.Scores.Actionable, 1e-12)
	assert.InDelta(t, recPlain.Scores.Speculative, recBoosted.Scores.Speculative, 1e-12)
}

func TestClassifyWeakListySentenceGetsIrrelevantBoost(t *testing.T) {
	// Both A and S similarities land below the weak threshold; the listy
	// shape earns the epsilon boost on Irrelevant.
	base := []float32{0.02, 0.04, 0.4}
	text := "These offerings include categories such as cloud services and privacy tools."

	cfg := DefaultConfig()
	cfg.TwoStageGate = false

	plainCfg := cfg
	plainCfg.RuleBoosts = false

	boosted, err := NewEngine(fixedEmbedding(base), testCentroids(t), cfg)
	require.NoError(t, err)
	plain, err := NewEngine(fixedEmbedding(base), testCentroids(t), plainCfg)
	require.NoError(t, err)

	recBoosted, err := boosted.Classify(context.Background(), Sentence{Text: text})
	require.NoError(t, err)
	recPlain, err := plain.Classify(context.Background(), Sentence{Text: text})
	require.NoError(t, err)

	assert.InDelta(t, recPlain.Scores.Irrelevant+DefaultEpsIrrelevant, recBoosted.Scores.Irrelevant, 1e-12)
}

func TestClassifyGateDisabledIrrelevantByArgmax(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TwoStageGate = false
	cfg.RuleBoosts = false

	engine, err := NewEngine(fixedEmbedding([]float32{0.1, 0.3, 0.9}), testCentroids(t), cfg)
	require.NoError(t, err)

	rec, err := engine.Classify(context.Background(), Sentence{Text: "Quarterly revenue details appear in the consolidated statements below."})
	require.NoError(t, err)
	assert.Equal(t, LabelIrrelevant, rec.Label)
	assert.False(t, rec.Gated)
}

func TestClassifyGateEnabledNeverPicksIrrelevantByScore(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RuleBoosts = false

	engine, err := NewEngine(fixedEmbedding([]float32{0.1, 0.3, 0.9}), testCentroids(t), cfg)
	require.NoError(t, err)

	rec, err := engine.Classify(context.Background(), Sentence{Text: "Quarterly revenue details appear in the consolidated statements below."})
	require.NoError(t, err)
	// With the gate on, ungated sentences only split between A and S.
	assert.Equal(t, LabelSpeculative, rec.Label)
}

func TestClassifyEmptyText(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TwoStageGate = false

	engine, err := NewEngine(fixedEmbedding([]float32{1, 0, 0}), testCentroids(t), cfg)
	require.NoError(t, err)

	_, err = engine.Classify(context.Background(), Sentence{Text: "   "})
	var embErr *EmbeddingError
	require.ErrorAs(t, err, &embErr)
}

func TestClassifyEmbeddingFailure(t *testing.T) {
	boom := errors.New("rate limited")
	mock := &testutil.MockEmbeddingClient{
		GenerateEmbeddingFunc: func(ctx context.Context, text string) ([]float32, error) {
			return nil, boom
		},
	}
	engine, err := NewEngine(mock, testCentroids(t), DefaultConfig())
	require.NoError(t, err)

	_, err = engine.Classify(context.Background(), Sentence{Text: "We deployed machine learning models across all segments."})
	var embErr *EmbeddingError
	require.ErrorAs(t, err, &embErr)
	assert.ErrorIs(t, err, boom)
}

func TestClassifyDeterministic(t *testing.T) {
	engine, err := NewEngine(fixedEmbedding([]float32{0.7, 0.4, 0.2}), testCentroids(t), DefaultConfig())
	require.NoError(t, err)

	sent := Sentence{Text: "We deployed machine learning models that reduced fulfillment costs by 30%.", File: "a.txt", Line: 3}
	first, err := engine.Classify(context.Background(), sent)
	require.NoError(t, err)
	second, err := engine.Classify(context.Background(), sent)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestReplayDecision(t *testing.T) {
	engine, err := NewEngine(fixedEmbedding([]float32{0.9, 0.3, 0.1}), testCentroids(t), DefaultConfig())
	require.NoError(t, err)

	rec, err := engine.Classify(context.Background(), Sentence{Text: "We deployed machine learning models that reduced fulfillment costs by 30%."})
	require.NoError(t, err)
	assert.Equal(t, rec.Label, ReplayDecision(rec, engine.Config()))

	gated := ClassificationRecord{Text: "17", Gated: true, Label: LabelIrrelevant}
	assert.Equal(t, LabelIrrelevant, ReplayDecision(gated, engine.Config()))
}

func TestReplayDecisionMarginProperty(t *testing.T) {
	// With the scores separated by at least tau, lexical cues never override
	// the larger score.
	cfg := DefaultConfig()
	rec := ClassificationRecord{
		Text:   "We may expand our machine learning capabilities next year.",
		Scores: ScoreVector{Actionable: 0.60, Speculative: 0.40, Irrelevant: 0.10},
	}
	assert.Equal(t, LabelActionable, ReplayDecision(rec, cfg))

	rec.Scores = ScoreVector{Actionable: 0.60, Speculative: 0.55, Irrelevant: 0.10}
	// Inside the margin the modal cue takes over.
	assert.Equal(t, LabelSpeculative, ReplayDecision(rec, cfg))
}

func TestNewEngineValidation(t *testing.T) {
	centroids := testCentroids(t)
	mock := fixedEmbedding([]float32{1, 0, 0})

	_, err := NewEngine(nil, centroids, DefaultConfig())
	assert.Error(t, err)

	_, err = NewEngine(mock, nil, DefaultConfig())
	var refErr *ReferenceDataError
	assert.ErrorAs(t, err, &refErr)

	bad := DefaultConfig()
	bad.Tau = -1
	_, err = NewEngine(mock, centroids, bad)
	assert.Error(t, err)
}
