package common

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	Paths    PathsConfig
	Extract  ExtractConfig
	Corpus   CorpusConfig
	Query    QueryConfig
	LLM      LLMConfig
	Generate GenerateConfig
}

// PathsConfig holds input/output locations
type PathsConfig struct {
	InvoicesDir   string
	DataDir       string
	RecordsDSN    string // sqlite file path or postgres:// URL
	SummaryCSV    string
	AttendanceCSV string
	WorkbookXLSX  string
	CorpusDB      string
}

// ExtractConfig holds batch extraction behavior
type ExtractConfig struct {
	Concurrency int
}

// CorpusConfig holds chunking parameters for the searchable corpus
type CorpusConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

// QueryConfig holds resolver parameters
type QueryConfig struct {
	TopK int
	// Marker overrides the built-in insufficiency marker when non-empty.
	Marker string
}

// GenerateConfig holds the pricing defaults and month range used when
// synthesizing sample invoices.
type GenerateConfig struct {
	CostPerDay      decimal.Decimal
	DiscountPercent int
	FromMonth       string // YYYY-MM inclusive
	ToMonth         string // YYYY-MM inclusive
}

// LLMConfig holds generation/embedding provider configuration
type LLMConfig struct {
	Provider   string // "ollama" or "gemini"
	BaseURL    string
	Model      string
	EmbedModel string
	APIKey     string
	Timeout    time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	dataDir := getEnv("PAWTRAIL_DATA_DIR", "data")
	return &Config{
		Paths: PathsConfig{
			InvoicesDir:   getEnv("PAWTRAIL_INVOICES_DIR", "invoices"),
			DataDir:       dataDir,
			RecordsDSN:    getEnv("PAWTRAIL_RECORDS_DSN", filepath.Join(dataDir, "records.db")),
			SummaryCSV:    getEnv("PAWTRAIL_SUMMARY_CSV", filepath.Join(dataDir, "invoice_summary.csv")),
			AttendanceCSV: getEnv("PAWTRAIL_ATTENDANCE_CSV", filepath.Join(dataDir, "attendance_detail.csv")),
			WorkbookXLSX:  getEnv("PAWTRAIL_WORKBOOK_XLSX", filepath.Join(dataDir, "invoices.xlsx")),
			CorpusDB:      getEnv("PAWTRAIL_CORPUS_DB", filepath.Join(dataDir, "corpus.db")),
		},
		Extract: ExtractConfig{
			Concurrency: getEnvAsInt("PAWTRAIL_EXTRACT_CONCURRENCY", 4),
		},
		Corpus: CorpusConfig{
			ChunkSize:    getEnvAsInt("PAWTRAIL_CHUNK_SIZE", 500),
			ChunkOverlap: getEnvAsInt("PAWTRAIL_CHUNK_OVERLAP", 50),
		},
		Query: QueryConfig{
			TopK:   getEnvAsInt("PAWTRAIL_TOP_K", 5),
			Marker: getEnv("PAWTRAIL_INSUFFICIENCY_MARKER", ""),
		},
		Generate: GenerateConfig{
			CostPerDay:      getEnvAsDecimal("PAWTRAIL_GEN_COST_PER_DAY", decimal.RequireFromString("22.50")),
			DiscountPercent: getEnvAsInt("PAWTRAIL_GEN_DISCOUNT_PERCENT", 50),
			FromMonth:       getEnv("PAWTRAIL_GEN_FROM", "2022-01"),
			ToMonth:         getEnv("PAWTRAIL_GEN_TO", "2025-05"),
		},
		LLM: LLMConfig{
			Provider:   getEnv("PAWTRAIL_LLM_PROVIDER", "ollama"),
			BaseURL:    getEnv("PAWTRAIL_LLM_BASE_URL", "http://localhost:11434"),
			Model:      getEnv("PAWTRAIL_LLM_MODEL", "llama3:instruct"),
			EmbedModel: getEnv("PAWTRAIL_EMBED_MODEL", "nomic-embed-text"),
			APIKey:     getEnv("PAWTRAIL_LLM_API_KEY", ""),
			Timeout:    getEnvAsDuration("PAWTRAIL_LLM_TIMEOUT", 120*time.Second),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := decimal.NewFromString(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
