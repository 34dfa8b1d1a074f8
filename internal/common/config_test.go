package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "invoices", cfg.Paths.InvoicesDir)
	assert.Equal(t, filepath.Join("data", "records.db"), cfg.Paths.RecordsDSN)
	assert.Equal(t, 4, cfg.Extract.Concurrency)
	assert.Equal(t, 500, cfg.Corpus.ChunkSize)
	assert.Equal(t, 50, cfg.Corpus.ChunkOverlap)
	assert.Equal(t, 5, cfg.Query.TopK)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, 120*time.Second, cfg.LLM.Timeout)
	assert.True(t, cfg.Generate.CostPerDay.Equal(decimal.RequireFromString("22.50")))
	assert.Equal(t, 50, cfg.Generate.DiscountPercent)
	assert.Equal(t, "2022-01", cfg.Generate.FromMonth)
	assert.Equal(t, "2025-05", cfg.Generate.ToMonth)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("PAWTRAIL_INVOICES_DIR", "/srv/invoices")
	t.Setenv("PAWTRAIL_TOP_K", "9")
	t.Setenv("PAWTRAIL_LLM_TIMEOUT", "30s")

	cfg := LoadConfig()
	assert.Equal(t, "/srv/invoices", cfg.Paths.InvoicesDir)
	assert.Equal(t, 9, cfg.Query.TopK)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
}

func writeOverrides(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "overrides.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestApplyOverrides(t *testing.T) {
	cfg := LoadConfig()
	path := writeOverrides(t, `{
		"paths": {"invoices_dir": "/mnt/invoices"},
		"corpus": {"chunk_size": 800},
		"query": {"top_k": 3, "marker": "CANNOT_ANSWER"},
		"generate": {"cost_per_day": "18.75", "discount_percent": 25, "from_month": "2023-06"},
		"llm": {"provider": "gemini", "timeout": "45s"}
	}`)

	require.NoError(t, cfg.ApplyOverrides(path))

	assert.Equal(t, "/mnt/invoices", cfg.Paths.InvoicesDir)
	assert.Equal(t, 800, cfg.Corpus.ChunkSize)
	// Keys absent from the file keep their env-derived values.
	assert.Equal(t, 50, cfg.Corpus.ChunkOverlap)
	assert.Equal(t, 3, cfg.Query.TopK)
	assert.Equal(t, "CANNOT_ANSWER", cfg.Query.Marker)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.True(t, cfg.Generate.CostPerDay.Equal(decimal.RequireFromString("18.75")))
	assert.Equal(t, 25, cfg.Generate.DiscountPercent)
	assert.Equal(t, "2023-06", cfg.Generate.FromMonth)
	assert.Equal(t, "2025-05", cfg.Generate.ToMonth)
}

func TestApplyOverridesRejectsBadCost(t *testing.T) {
	cfg := LoadConfig()
	path := writeOverrides(t, `{"generate": {"cost_per_day": "twenty"}}`)

	assert.Error(t, cfg.ApplyOverrides(path))
}

func TestApplyOverridesRejectsUnknownKeys(t *testing.T) {
	cfg := LoadConfig()
	path := writeOverrides(t, `{"pathz": {"invoices_dir": "/x"}}`)

	err := cfg.ApplyOverrides(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate config overrides")
}

func TestApplyOverridesRejectsBadTypes(t *testing.T) {
	cfg := LoadConfig()
	path := writeOverrides(t, `{"query": {"top_k": "five"}}`)

	assert.Error(t, cfg.ApplyOverrides(path))
}

func TestApplyOverridesRejectsUnknownProvider(t *testing.T) {
	cfg := LoadConfig()
	path := writeOverrides(t, `{"llm": {"provider": "openai"}}`)

	assert.Error(t, cfg.ApplyOverrides(path))
}

func TestApplyOverridesMissingFile(t *testing.T) {
	cfg := LoadConfig()
	assert.Error(t, cfg.ApplyOverrides(filepath.Join(t.TempDir(), "nope.json")))
}
