package ai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
)

const (
	DefaultEmbeddingModel      = "text-embedding-3-small"
	DefaultEmbeddingDimensions = 256
)

// OpenAIEmbedder computes text embeddings with the OpenAI embeddings endpoint.
type OpenAIEmbedder struct {
	client     openai.Client
	model      string
	dimensions int
}

// NewOpenAIEmbedder creates an embedder. Empty model and zero dimensions select the defaults.
func NewOpenAIEmbedder(baseURL, apiKey, modelName string, dimensions int, httpClient *http.Client) *OpenAIEmbedder {
	if modelName == "" {
		modelName = DefaultEmbeddingModel
	}
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	return &OpenAIEmbedder{
		client:     openai.NewClient(clientOptions(baseURL, apiKey, httpClient)...),
		model:      modelName,
		dimensions: dimensions,
	}
}

// Embed returns the embedding vector of text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
		Model:      openai.EmbeddingModel(e.model),
		Dimensions: openai.Int(int64(e.dimensions)),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request: %w", asHTTPError(err))
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response has no data")
	}
	return resp.Data[0].Embedding, nil
}
