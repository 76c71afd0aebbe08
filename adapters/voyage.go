package adapters

import (
	"context"
	"fmt"

	"github.com/austinfhunter/voyageai"
)

const (
	// VoyageEmbeddingModel is the default VoyageAI embedding model.
	VoyageEmbeddingModel = "voyage-3.5-lite"

	// VoyageEmbeddingDimensions is the output dimension requested from the
	// model. Centroid reference data must be produced at the same dimension.
	VoyageEmbeddingDimensions = 1024
)

// VoyageEmbeddingAdapter implements aiwash.EmbeddingClient on VoyageAI.
type VoyageEmbeddingAdapter struct {
	client     *voyageai.VoyageClient
	model      string
	dimensions int
}

// NewVoyageEmbeddingAdapter creates a VoyageAI-backed embedding client. A
// nil apiKey falls back to the VOYAGEAI_API_KEY environment variable.
func NewVoyageEmbeddingAdapter(apiKey *string) (*VoyageEmbeddingAdapter, error) {
	key, err := loadEnvVar(apiKey, "VOYAGEAI_API_KEY")
	if err != nil {
		return nil, err
	}
	return &VoyageEmbeddingAdapter{
		client:     voyageai.NewClient(&voyageai.VoyageClientOpts{Key: *key}),
		model:      VoyageEmbeddingModel,
		dimensions: VoyageEmbeddingDimensions,
	}, nil
}

// SetModel overrides the embedding model.
func (a *VoyageEmbeddingAdapter) SetModel(model string) { a.model = model }

// SetDimensions overrides the requested output dimension.
func (a *VoyageEmbeddingAdapter) SetDimensions(dimensions int) { a.dimensions = dimensions }

// GenerateEmbedding implements the EmbeddingClient interface.
func (a *VoyageEmbeddingAdapter) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	dimensions := a.dimensions
	embeddings, err := a.client.Embed(
		[]string{text},
		a.model,
		&voyageai.EmbeddingRequestOpts{OutputDimension: &dimensions},
	)
	if err != nil {
		return nil, fmt.Errorf("could not get embedding: %w", err)
	}
	if len(embeddings.Data) == 0 {
		return nil, fmt.Errorf("voyage returned no embeddings")
	}
	return embeddings.Data[0].Embedding, nil
}
