package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// postJSON posts a JSON body to an API path on the configured server and
// returns the raw response body. Every call carries a request id so a slow
// generation can be matched to its response line in the logs.
func (c *Client) postJSON(ctx context.Context, path string, body any) ([]byte, error) {
	reqID := uuid.New().String()
	start := time.Now()
	url := strings.TrimRight(c.cfg.BaseURL, "/") + path

	bs, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug("ollama.http.request", "req_id", reqID, "path", path, "content_length", len(bs))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("ollama.http.send_error",
			"req_id", reqID,
			"path", path,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Warn("ollama.http.body_close_error", "req_id", reqID, "error", err)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.log.Debug("ollama.http.response",
		"req_id", reqID,
		"path", path,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}
	return raw, nil
}
