package adapters

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/finwatch/aiwash/internal/retry"
)

// OpenAIEmbeddingModel is the default OpenAI embedding model.
const OpenAIEmbeddingModel = "text-embedding-3-small"

// OpenAIEmbeddingAdapter implements aiwash.EmbeddingClient on the OpenAI
// embeddings API. It also works against OpenAI-compatible endpoints when a
// base URL override is set.
type OpenAIEmbeddingAdapter struct {
	client openai.Client
	model  string
	retry  retry.Config
}

// NewOpenAIEmbeddingAdapter creates an OpenAI-backed embedding client. A nil
// apiKey falls back to the OPENAI_API_KEY environment variable.
func NewOpenAIEmbeddingAdapter(apiKey *string, baseURL string) (*OpenAIEmbeddingAdapter, error) {
	key, err := loadEnvVar(apiKey, "OPENAI_API_KEY")
	if err != nil {
		return nil, err
	}
	opts := []option.RequestOption{option.WithAPIKey(*key)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIEmbeddingAdapter{
		client: openai.NewClient(opts...),
		model:  OpenAIEmbeddingModel,
		retry:  retry.DefaultConfig(),
	}, nil
}

// SetModel overrides the embedding model.
func (a *OpenAIEmbeddingAdapter) SetModel(model string) { a.model = model }

// GenerateEmbedding implements the EmbeddingClient interface. Rate limits and
// server errors are retried with exponential backoff.
func (a *OpenAIEmbeddingAdapter) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	var resp *openai.CreateEmbeddingResponse
	err := retry.Do(ctx, a.retry, isRetryable, func() error {
		var err error
		resp, err = a.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: []string{text}},
			Model: openai.EmbeddingModel(a.model),
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("could not get embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai returned no embeddings")
	}
	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}

// isRetryable treats rate limiting and server-side failures as transient.
func isRetryable(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	return false
}
