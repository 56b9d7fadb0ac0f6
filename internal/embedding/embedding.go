package embedding

import (
	"context"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"lecture-rag/internal/config"
)

// NewEmbedder builds a langchaingo embedder against the configured
// OpenAI-compatible endpoint.
func NewEmbedder(cfg *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	opts := []openai.Option{
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithEmbeddingModel(cfg.EmbeddingModel),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}
	return embeddings.NewEmbedder(llm)
}

// EmbedTexts embeds a batch of chunk contents.
func EmbedTexts(ctx context.Context, embedder *embeddings.EmbedderImpl, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return embedder.EmbedDocuments(ctx, texts)
}

// EmbedQuery embeds a single query string.
func EmbedQuery(ctx context.Context, embedder *embeddings.EmbedderImpl, text string) ([]float32, error) {
	return embedder.EmbedQuery(ctx, text)
}
