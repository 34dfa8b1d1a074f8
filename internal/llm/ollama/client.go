// Package ollama reaches a local Ollama server for both generation and
// embeddings. This is the default provider: the whole pipeline can run
// without any cloud credential.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pawprintslab/pawtrail/internal/common"
)

type Config struct {
	BaseURL    string
	Model      string
	EmbedModel string
	Timeout    time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
}

func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, common.MissingPrerequisite("ollama base URL")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger,
	}, nil
}

// Generate implements llm.Generator over /api/generate, non-streaming.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	body := map[string]any{
		"model":  c.cfg.Model,
		"prompt": prompt,
		"stream": false,
	}
	raw, err := c.postJSON(ctx, "/api/generate", body)
	if err != nil {
		c.log.Error("ollama.generate.failed", "model", c.cfg.Model, "error", err)
		return "", fmt.Errorf("ollama generate: %w", err)
	}

	var resp struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}

	c.log.Info("ollama.generate.ok",
		"model", c.cfg.Model,
		"prompt_len", len(prompt),
		"response_len", len(resp.Response),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return resp.Response, nil
}

// Embed implements llm.Embedder over /api/embeddings, one call per text.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		body := map[string]any{
			"model":  c.cfg.EmbedModel,
			"prompt": text,
		}
		raw, err := c.postJSON(ctx, "/api/embeddings", body)
		if err != nil {
			c.log.Error("ollama.embed.failed", "model", c.cfg.EmbedModel, "index", i, "error", err)
			return nil, fmt.Errorf("ollama embed text %d: %w", i, err)
		}

		var resp struct {
			Embedding []float32 `json:"embedding"`
		}
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, fmt.Errorf("decode ollama embedding: %w", err)
		}
		if len(resp.Embedding) == 0 {
			return nil, fmt.Errorf("ollama returned empty embedding for text %d", i)
		}
		vectors[i] = resp.Embedding
	}
	c.log.Info("ollama.embed.ok", "model", c.cfg.EmbedModel, "texts", len(texts))
	return vectors, nil
}
