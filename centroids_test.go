package aiwash

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validVectors() map[Label][]float32 {
	return map[Label][]float32{
		LabelActionable:  {0.1, 0.2, 0.3},
		LabelSpeculative: {0.4, 0.5, 0.6},
		LabelIrrelevant:  {0.7, 0.8, 0.9},
	}
}

func TestNewCentroidSetValidation(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name   string
		mutate func(map[Label][]float32)
	}{
		{"missing label", func(v map[Label][]float32) { delete(v, LabelSpeculative) }},
		{"empty vector", func(v map[Label][]float32) { v[LabelIrrelevant] = nil }},
		{"dimension mismatch", func(v map[Label][]float32) { v[LabelSpeculative] = []float32{1, 2} }},
		{"nan value", func(v map[Label][]float32) { v[LabelActionable] = []float32{1, float32(math.NaN()), 3} }},
		{"inf value", func(v map[Label][]float32) { v[LabelActionable] = []float32{1, float32(math.Inf(1)), 3} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vectors := validVectors()
			tt.mutate(vectors)
			_, err := NewCentroidSet(vectors, now)
			var refErr *ReferenceDataError
			assert.ErrorAs(t, err, &refErr)
		})
	}

	set, err := NewCentroidSet(validVectors(), now)
	require.NoError(t, err)
	assert.Equal(t, 3, set.Dimensions())
	assert.Equal(t, now, set.GeneratedAt())
}

func TestCentroidSetImmutable(t *testing.T) {
	vectors := validVectors()
	set, err := NewCentroidSet(vectors, time.Now().UTC())
	require.NoError(t, err)
	fp := set.Fingerprint()

	// Mutating the caller's map must not reach into the set.
	vectors[LabelActionable][0] = 99

	again, err := NewCentroidSet(validVectors(), time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, fp, again.Fingerprint())
}

func TestFingerprintSensitivity(t *testing.T) {
	base, err := NewCentroidSet(validVectors(), time.Now().UTC())
	require.NoError(t, err)

	changed := validVectors()
	changed[LabelIrrelevant][2] += 1e-6
	other, err := NewCentroidSet(changed, time.Now().UTC())
	require.NoError(t, err)

	assert.NotEqual(t, base.Fingerprint(), other.Fingerprint())

	// Identical content reproduces the fingerprint regardless of timestamp.
	same, err := NewCentroidSet(validVectors(), time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, base.Fingerprint(), same.Fingerprint())
}

func TestSaveLoadCentroidsRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs", "centroids.json")
	set, err := NewCentroidSet(validVectors(), time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.NoError(t, SaveCentroids(path, set))
	loaded, err := LoadCentroids(path)
	require.NoError(t, err)

	assert.Equal(t, set.Fingerprint(), loaded.Fingerprint())
	assert.Equal(t, set.Dimensions(), loaded.Dimensions())
	assert.True(t, set.GeneratedAt().Equal(loaded.GeneratedAt()))
}

func TestLoadCentroidsErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadCentroids(filepath.Join(dir, "missing.json"))
	var refErr *ReferenceDataError
	require.ErrorAs(t, err, &refErr)
	assert.NotEmpty(t, refErr.Path)
}

func TestSimilarity(t *testing.T) {
	set, err := NewCentroidSet(map[Label][]float32{
		LabelActionable:  {1, 0, 0},
		LabelSpeculative: {0, 1, 0},
		LabelIrrelevant:  {0, 0, 1},
	}, time.Now().UTC())
	require.NoError(t, err)

	scores, err := set.Similarity([]float32{1, 0, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, scores.Actionable, 1e-9)
	assert.InDelta(t, 0.0, scores.Speculative, 1e-9)
	assert.InDelta(t, 0.0, scores.Irrelevant, 1e-9)

	_, err = set.Similarity([]float32{1, 0})
	assert.Error(t, err)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, cosine([]float32{2, 0}, []float32{5, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosine([]float32{1, 0}, []float32{-3, 0}), 1e-9)
	assert.Equal(t, 0.0, cosine([]float32{0, 0}, []float32{1, 1}))
}

func TestComputeCentroids(t *testing.T) {
	examples := map[Label][][]float32{
		LabelActionable:  {{1, 0}, {3, 2}},
		LabelSpeculative: {{0, 1}},
		LabelIrrelevant:  {{2, 2}, {0, 0}, {1, 1}},
	}
	set, err := ComputeCentroids(examples, time.Now().UTC())
	require.NoError(t, err)

	scores, err := set.Similarity([]float32{2, 1})
	require.NoError(t, err)
	// Actionable centroid is the mean (2, 1), perfectly aligned.
	assert.InDelta(t, 1.0, scores.Actionable, 1e-6)
}

func TestComputeCentroidsErrors(t *testing.T) {
	_, err := ComputeCentroids(map[Label][][]float32{
		LabelActionable:  {{1, 0}},
		LabelSpeculative: {{0, 1}},
	}, time.Now().UTC())
	var refErr *ReferenceDataError
	assert.ErrorAs(t, err, &refErr)

	_, err = ComputeCentroids(map[Label][][]float32{
		LabelActionable:  {{1, 0}, {1, 0, 0}},
		LabelSpeculative: {{0, 1}},
		LabelIrrelevant:  {{1, 1}},
	}, time.Now().UTC())
	assert.ErrorAs(t, err, &refErr)
}
