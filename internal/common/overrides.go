package common

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/shopspring/decimal"
)

//go:embed config.schema.json
var overridesSchema string

// overridesFile mirrors Config with every field optional; only keys present
// in the JSON file replace the env-derived value.
type overridesFile struct {
	Paths *struct {
		InvoicesDir   *string `json:"invoices_dir"`
		DataDir       *string `json:"data_dir"`
		RecordsDSN    *string `json:"records_dsn"`
		SummaryCSV    *string `json:"summary_csv"`
		AttendanceCSV *string `json:"attendance_csv"`
		WorkbookXLSX  *string `json:"workbook_xlsx"`
		CorpusDB      *string `json:"corpus_db"`
	} `json:"paths"`
	Extract *struct {
		Concurrency *int `json:"concurrency"`
	} `json:"extract"`
	Corpus *struct {
		ChunkSize    *int `json:"chunk_size"`
		ChunkOverlap *int `json:"chunk_overlap"`
	} `json:"corpus"`
	Query *struct {
		TopK   *int    `json:"top_k"`
		Marker *string `json:"marker"`
	} `json:"query"`
	Generate *struct {
		CostPerDay      *string `json:"cost_per_day"`
		DiscountPercent *int    `json:"discount_percent"`
		FromMonth       *string `json:"from_month"`
		ToMonth         *string `json:"to_month"`
	} `json:"generate"`
	LLM *struct {
		Provider   *string `json:"provider"`
		BaseURL    *string `json:"base_url"`
		Model      *string `json:"model"`
		EmbedModel *string `json:"embed_model"`
		APIKey     *string `json:"api_key"`
		Timeout    *string `json:"timeout"`
	} `json:"llm"`
}

// ApplyOverrides merges a JSON overrides file into cfg. The file is
// validated against the embedded schema first so a malformed file fails
// loudly instead of half-applying.
func (c *Config) ApplyOverrides(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return WrapError(err, "read config overrides")
	}

	schema, err := jsonschema.CompileString("config.schema.json", overridesSchema)
	if err != nil {
		return WrapError(err, "compile config schema")
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return WrapError(err, "decode config overrides")
	}
	if err := schema.Validate(doc); err != nil {
		return WrapError(err, "validate config overrides")
	}

	var ov overridesFile
	if err := json.Unmarshal(raw, &ov); err != nil {
		return WrapError(err, "unmarshal config overrides")
	}

	if p := ov.Paths; p != nil {
		setString(&c.Paths.InvoicesDir, p.InvoicesDir)
		setString(&c.Paths.DataDir, p.DataDir)
		setString(&c.Paths.RecordsDSN, p.RecordsDSN)
		setString(&c.Paths.SummaryCSV, p.SummaryCSV)
		setString(&c.Paths.AttendanceCSV, p.AttendanceCSV)
		setString(&c.Paths.WorkbookXLSX, p.WorkbookXLSX)
		setString(&c.Paths.CorpusDB, p.CorpusDB)
	}
	if e := ov.Extract; e != nil {
		setInt(&c.Extract.Concurrency, e.Concurrency)
	}
	if co := ov.Corpus; co != nil {
		setInt(&c.Corpus.ChunkSize, co.ChunkSize)
		setInt(&c.Corpus.ChunkOverlap, co.ChunkOverlap)
	}
	if q := ov.Query; q != nil {
		setInt(&c.Query.TopK, q.TopK)
		setString(&c.Query.Marker, q.Marker)
	}
	if g := ov.Generate; g != nil {
		if g.CostPerDay != nil {
			d, err := decimal.NewFromString(*g.CostPerDay)
			if err != nil {
				return fmt.Errorf("parse generate.cost_per_day: %w", err)
			}
			c.Generate.CostPerDay = d
		}
		setInt(&c.Generate.DiscountPercent, g.DiscountPercent)
		setString(&c.Generate.FromMonth, g.FromMonth)
		setString(&c.Generate.ToMonth, g.ToMonth)
	}
	if l := ov.LLM; l != nil {
		setString(&c.LLM.Provider, l.Provider)
		setString(&c.LLM.BaseURL, l.BaseURL)
		setString(&c.LLM.Model, l.Model)
		setString(&c.LLM.EmbedModel, l.EmbedModel)
		setString(&c.LLM.APIKey, l.APIKey)
		if l.Timeout != nil {
			d, err := time.ParseDuration(strings.TrimSpace(*l.Timeout))
			if err != nil {
				return fmt.Errorf("parse llm.timeout: %w", err)
			}
			c.LLM.Timeout = d
		}
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
