package llmservice

import (
	"context"
	"errors"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"lecture-rag/internal/config"
)

// Client wraps the hosted chat model. One instance is built by the
// composition root and shared across components.
type Client struct {
	llm *openai.LLM
}

func NewClient(cfg *config.LLMConfig) (*Client, error) {
	opts := []openai.Option{
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithModel(cfg.ChatModel),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}
	return &Client{llm: llm}, nil
}

// Generate runs a single-turn completion at the given temperature.
func (c *Client) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}
	res, err := c.llm.GenerateContent(ctx, messages, llms.WithTemperature(temperature))
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", errors.New("llmservice: empty choices")
	}
	return res.Choices[0].Content, nil
}

// Stream runs a completion and forwards output chunks to fn as they arrive.
func (c *Client) Stream(ctx context.Context, prompt string, temperature float64, fn func(ctx context.Context, chunk []byte) error) error {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}
	_, err := c.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(temperature),
		llms.WithStreamingFunc(fn),
	)
	return err
}
