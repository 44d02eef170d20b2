package services

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// EmbeddingClient turns text batches into fixed-length vectors, one vector
// per input text, in input order.
type EmbeddingClient interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// OpenAIEmbeddingClient calls an OpenAI-compatible embeddings endpoint.
// Ollama and most gateways speak the same protocol behind OPENAI_BASE_URL.
type OpenAIEmbeddingClient struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewOpenAIEmbeddingClient creates an embedding client bound to one model
func NewOpenAIEmbeddingClient(client *openai.Client, model string) *OpenAIEmbeddingClient {
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	return &OpenAIEmbeddingClient{
		client: client,
		model:  openai.EmbeddingModel(model),
	}
}

// EmbedTexts implements EmbeddingClient. A count mismatch or an empty vector
// is an error, never a silent degrade.
func (c *OpenAIEmbeddingClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: c.model,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %v", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response size mismatch: expected %d vectors, received %d",
			len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(texts) {
			return nil, fmt.Errorf("embedding response contains out-of-range index %d", item.Index)
		}
		vectors[item.Index] = item.Embedding
	}

	for i, vector := range vectors {
		if len(vector) == 0 {
			return nil, fmt.Errorf("embedding backend returned empty vector for input %d", i)
		}
	}

	return vectors, nil
}
