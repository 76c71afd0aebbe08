package aiwash

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"
)

// CentroidSet maps each label to its reference vector (the mean embedding of
// that label's training examples). It is immutable: a run loads one set,
// shares it read-only across all workers, and new training data produces a
// new set with a new fingerprint.
type CentroidSet struct {
	generatedAt time.Time
	vectors     map[Label][]float32
	dim         int
	fingerprint string
}

// centroidFile is the on-disk shape of the centroid reference artifact.
type centroidFile struct {
	GeneratedAt time.Time            `json:"generated_at"`
	Vectors     map[string][]float32 `json:"vectors"`
}

// NewCentroidSet validates vectors and builds an immutable set. All three
// labels must be present with equal-length, finite vectors.
func NewCentroidSet(vectors map[Label][]float32, generatedAt time.Time) (*CentroidSet, error) {
	dim := 0
	copied := make(map[Label][]float32, len(Labels))
	for _, label := range Labels {
		vec, ok := vectors[label]
		if !ok || len(vec) == 0 {
			return nil, &ReferenceDataError{Reason: fmt.Sprintf("missing centroid for label %s", label)}
		}
		if dim == 0 {
			dim = len(vec)
		} else if len(vec) != dim {
			return nil, &ReferenceDataError{
				Reason: fmt.Sprintf("centroid for %s has dimension %d, want %d", label, len(vec), dim),
			}
		}
		for i, v := range vec {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				return nil, &ReferenceDataError{
					Reason: fmt.Sprintf("centroid for %s has non-finite value at index %d", label, i),
				}
			}
		}
		cp := make([]float32, len(vec))
		copy(cp, vec)
		copied[label] = cp
	}

	return &CentroidSet{
		generatedAt: generatedAt,
		vectors:     copied,
		dim:         dim,
		fingerprint: fingerprintVectors(copied),
	}, nil
}

// fingerprintVectors hashes the numeric content in canonical label order.
// Any single-byte change to any vector changes the result; identical content
// always reproduces it.
func fingerprintVectors(vectors map[Label][]float32) string {
	h := sha256.New()
	var buf [4]byte
	for _, label := range Labels {
		h.Write([]byte(label))
		for _, v := range vectors[label] {
			binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
			h.Write(buf[:])
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// GeneratedAt returns the generation timestamp of the reference data.
func (c *CentroidSet) GeneratedAt() time.Time { return c.generatedAt }

// Fingerprint returns the stable content hash of the set. It is used only
// for staleness comparisons, never as equality of meaning.
func (c *CentroidSet) Fingerprint() string { return c.fingerprint }

// Dimensions returns the vector length shared by all three centroids.
func (c *CentroidSet) Dimensions() int { return c.dim }

// Similarity computes the cosine similarity between vec and each of the
// three centroids, independently per label.
func (c *CentroidSet) Similarity(vec []float32) (ScoreVector, error) {
	if len(vec) != c.dim {
		return ScoreVector{}, fmt.Errorf("embedding dimension %d does not match centroid dimension %d", len(vec), c.dim)
	}
	return ScoreVector{
		Actionable:  cosine(vec, c.vectors[LabelActionable]),
		Speculative: cosine(vec, c.vectors[LabelSpeculative]),
		Irrelevant:  cosine(vec, c.vectors[LabelIrrelevant]),
	}, nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// LoadCentroids reads the centroid reference artifact from path.
func LoadCentroids(path string) (*CentroidSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReferenceDataError{Path: path, Err: err}
	}
	var file centroidFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, &ReferenceDataError{Path: path, Reason: "malformed JSON", Err: err}
	}
	vectors := make(map[Label][]float32, len(file.Vectors))
	for name, vec := range file.Vectors {
		vectors[Label(name)] = vec
	}
	set, err := NewCentroidSet(vectors, file.GeneratedAt)
	if err != nil {
		var refErr *ReferenceDataError
		if errors.As(err, &refErr) {
			refErr.Path = path
		}
		return nil, err
	}
	return set, nil
}

// SaveCentroids writes the centroid reference artifact to path.
func SaveCentroids(path string, set *CentroidSet) error {
	vectors := make(map[string][]float32, len(set.vectors))
	for label, vec := range set.vectors {
		vectors[string(label)] = vec
	}
	data, err := json.Marshal(centroidFile{GeneratedAt: set.generatedAt, Vectors: vectors})
	if err != nil {
		return fmt.Errorf("failed to encode centroids: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create centroid directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write centroids: %w", err)
	}
	return nil
}

// ComputeCentroids builds a CentroidSet from labeled example embeddings by
// averaging each label's vectors.
func ComputeCentroids(examples map[Label][][]float32, generatedAt time.Time) (*CentroidSet, error) {
	vectors := make(map[Label][]float32, len(Labels))
	for _, label := range Labels {
		vecs := examples[label]
		if len(vecs) == 0 {
			return nil, &ReferenceDataError{Reason: fmt.Sprintf("no training examples for label %s", label)}
		}
		dim := len(vecs[0])
		sum := make([]float64, dim)
		for _, vec := range vecs {
			if len(vec) != dim {
				return nil, &ReferenceDataError{
					Reason: fmt.Sprintf("inconsistent embedding dimensions for label %s", label),
				}
			}
			for i, v := range vec {
				sum[i] += float64(v)
			}
		}
		mean := make([]float32, dim)
		for i := range sum {
			mean[i] = float32(sum[i] / float64(len(vecs)))
		}
		vectors[label] = mean
	}
	return NewCentroidSet(vectors, generatedAt)
}
