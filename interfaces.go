package aiwash

import "context"

// EmbeddingClient turns text into a fixed-length numeric vector. It is the
// only external collaborator of the Classification Engine and is assumed
// deterministic for identical input and model version.
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}
