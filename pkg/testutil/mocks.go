package testutil

import (
	"context"
	"sync"
)

// MockEmbeddingClient is a mock implementation of EmbeddingClient for testing
type MockEmbeddingClient struct {
	GenerateEmbeddingFunc func(ctx context.Context, text string) ([]float32, error)
	mu                    sync.Mutex
	CallCount             int
	LastText              string
}

func (m *MockEmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.CallCount++
	m.LastText = text
	m.mu.Unlock()

	if m.GenerateEmbeddingFunc != nil {
		return m.GenerateEmbeddingFunc(ctx, text)
	}
	// Default: return a simple embedding based on text length
	embedding := make([]float32, 10)
	for i := range embedding {
		embedding[i] = float32(len(text)) / 100.0
	}
	return embedding, nil
}

// Calls returns the number of GenerateEmbedding invocations so far.
func (m *MockEmbeddingClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}
