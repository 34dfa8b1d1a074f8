// Package gemini is the cloud alternative to the local Ollama provider,
// backed by the Google generative AI SDK.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/pawprintslab/pawtrail/internal/common"
)

type Config struct {
	APIKey     string
	Model      string
	EmbedModel string
}

type Client struct {
	cfg    Config
	client *genai.Client
	log    *slog.Logger
}

func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, common.MissingPrerequisite("gemini API key")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = "text-embedding-004"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{cfg: cfg, client: client, log: logger}, nil
}

// Generate implements llm.Generator.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.cfg.Model)
	model.SetTemperature(0.1)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		c.log.Error("gemini.generate.failed", "model", c.cfg.Model, "error", err)
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text, err := extractText(resp)
	if err != nil {
		return "", err
	}
	c.log.Info("gemini.generate.ok", "model", c.cfg.Model, "response_len", len(text))
	return text, nil
}

// Embed implements llm.Embedder with one batched request.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	em := c.client.EmbeddingModel(c.cfg.EmbedModel)
	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}

	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		c.log.Error("gemini.embed.failed", "model", c.cfg.EmbedModel, "error", err)
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini returned %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for i, e := range resp.Embeddings {
		vectors[i] = e.Values
	}
	c.log.Info("gemini.embed.ok", "model", c.cfg.EmbedModel, "texts", len(texts))
	return vectors, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini response has no candidates")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("gemini response has no text parts")
	}
	return b.String(), nil
}
