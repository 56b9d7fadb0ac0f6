package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	apiKeyHeader       = "X-CLOVASPEECH-API-KEY"
	defaultHTTPTimeout = 120 * time.Second
)

// Config captures the runtime settings required to talk to the Clova
// speech recognition API.
type Config struct {
	APIURL   string
	APIKey   string
	Language string
	Timeout  time.Duration
}

// Client submits audio files to the Clova speech API synchronously and
// returns the full recognized text. There is no retry; a failed request is
// a failed ingestion.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client (useful for tests).
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func NewClient(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	if cfg.Language == "" {
		cfg.Language = "ko-KR"
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type recognitionParams struct {
	Language   string `json:"language"`
	Completion string `json:"completion"`
	Callback   string `json:"callback"`
	FullText   bool   `json:"fullText"`
}

type recognitionResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads the audio file at audioPath and returns the
// recognized text.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", fmt.Errorf("transcribe: api key required")
	}

	audio, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("transcribe: open audio: %w", err)
	}
	defer audio.Close()

	params, err := json.Marshal(recognitionParams{
		Language:   c.cfg.Language,
		Completion: "sync",
		Callback:   "",
		FullText:   true,
	})
	if err != nil {
		return "", fmt.Errorf("transcribe: encode params: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("media", filepath.Base(audioPath))
	if err != nil {
		return "", fmt.Errorf("transcribe: create form file: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("transcribe: read audio: %w", err)
	}
	if err := writer.WriteField("params", string(params)); err != nil {
		return "", fmt.Errorf("transcribe: write params: %w", err)
	}
	if err := writer.WriteField("type", "application/json"); err != nil {
		return "", fmt.Errorf("transcribe: write type: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("transcribe: finalize body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, &body)
	if err != nil {
		return "", fmt.Errorf("transcribe: new request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.cfg.APIKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcribe: http error: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("transcribe: read body: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("transcribe: http %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var recognized recognitionResponse
	if err := json.Unmarshal(payload, &recognized); err != nil {
		return "", fmt.Errorf("transcribe: decode response: %w", err)
	}
	return recognized.Text, nil
}
