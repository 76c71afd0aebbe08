package aiwash

import (
	"fmt"
	"strings"
	"time"
)

// Label is one of the three mutually exclusive classification categories.
// Labels are categorical: there is no ordering and no numeric meaning.
type Label string

const (
	LabelActionable  Label = "Actionable"
	LabelSpeculative Label = "Speculative"
	LabelIrrelevant  Label = "Irrelevant"
)

// Labels lists the three classes in canonical order. Confusion matrices,
// failure taxonomies, and fingerprints all iterate in this order.
var Labels = [3]Label{LabelActionable, LabelSpeculative, LabelIrrelevant}

// Valid reports whether l is one of the three known labels.
func (l Label) Valid() bool {
	return l == LabelActionable || l == LabelSpeculative || l == LabelIrrelevant
}

// ParseLabel converts a string to a Label, ignoring case and surrounding
// whitespace.
func ParseLabel(s string) (Label, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "actionable":
		return LabelActionable, nil
	case "speculative":
		return LabelSpeculative, nil
	case "irrelevant":
		return LabelIrrelevant, nil
	}
	return "", fmt.Errorf("unknown label %q", s)
}

func labelIndex(l Label) int {
	switch l {
	case LabelActionable:
		return 0
	case LabelSpeculative:
		return 1
	case LabelIrrelevant:
		return 2
	}
	return -1
}

// ScoreVector holds one similarity score per label. Raw centroid scores are
// cosine similarities in [-1, 1]; rule boosts may push values outside that
// range, which is accepted because only relative ordering and margin matter.
type ScoreVector struct {
	Actionable  float64
	Speculative float64
	Irrelevant  float64
}

// Sentence is a string plus its source position. It is immutable once
// produced by the merger; the classifier only reads it.
type Sentence struct {
	Text string
	File string
	Line int
}

// ClassificationRecord is the immutable per-sentence output of the
// Classification Engine. Replaying the decision rule on Scores and Gated
// must reproduce Label; see ReplayDecision.
type ClassificationRecord struct {
	Text   string
	File   string
	Line   int
	Label  Label
	Scores ScoreVector
	Gated  bool
}

// FileFailure names a single input file that could not be classified and why.
// Silent drops are the worst defect class for this system, so every failure
// is enumerated here.
type FileFailure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Coverage tallies expected input files against files that ended the run
// with a valid, matching-fingerprint output artifact.
type Coverage struct {
	Expected int      `json:"expected"`
	Produced int      `json:"produced"`
	Missing  []string `json:"missing,omitempty"`
}

// RunManifest is the per-batch metadata record. It is written at run end and
// read by operators; staleness decisions never consult it, they use the
// file/centroid fingerprints directly.
type RunManifest struct {
	RunID               string        `json:"run_id"`
	StartedAt           time.Time     `json:"started_at"`
	FinishedAt          time.Time     `json:"finished_at"`
	Params              Config        `json:"params"`
	CentroidFingerprint string        `json:"centroid_fingerprint"`
	ExpectedFiles       int           `json:"expected_files"`
	Processed           int           `json:"processed"`
	Skipped             int           `json:"skipped"`
	Failed              int           `json:"failed"`
	Failures            []FileFailure `json:"failures,omitempty"`
	Coverage            Coverage      `json:"coverage"`
}
