package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pawprintslab/pawtrail/internal/aggregate"
	"github.com/pawprintslab/pawtrail/internal/corpus"
	"github.com/pawprintslab/pawtrail/internal/entity"
	"github.com/pawprintslab/pawtrail/internal/extract"
	"github.com/pawprintslab/pawtrail/internal/ingest"
	"github.com/pawprintslab/pawtrail/internal/llm"
	"github.com/pawprintslab/pawtrail/internal/llm/gemini"
	"github.com/pawprintslab/pawtrail/internal/llm/ollama"
	"github.com/pawprintslab/pawtrail/internal/store"
)

// provider bundles the generation and embedding capabilities of whichever
// backend the configuration selects.
type provider struct {
	generator llm.Generator
	embedder  llm.Embedder
	close     func() error
}

func (p *provider) Close() error {
	if p.close == nil {
		return nil
	}
	return p.close()
}

// newProvider wires the configured LLM backend. Selection lives here, in the
// command glue, so the llm subpackages stay independent of each other.
func newProvider(ctx context.Context) (*provider, error) {
	switch cfg.LLM.Provider {
	case "ollama":
		client, err := ollama.New(ollama.Config{
			BaseURL:    cfg.LLM.BaseURL,
			Model:      cfg.LLM.Model,
			EmbedModel: cfg.LLM.EmbedModel,
			Timeout:    cfg.LLM.Timeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		return &provider{generator: client, embedder: client}, nil
	case "gemini":
		client, err := gemini.New(ctx, gemini.Config{
			APIKey:     cfg.LLM.APIKey,
			Model:      cfg.LLM.Model,
			EmbedModel: cfg.LLM.EmbedModel,
		}, logger)
		if err != nil {
			return nil, err
		}
		return &provider{generator: client, embedder: client, close: client.Close}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

func openRecords(ctx context.Context) (*sql.DB, *store.RecordStore, error) {
	if err := os.MkdirAll(cfg.Paths.DataDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}
	db, driver, err := store.Open(ctx, cfg.Paths.RecordsDSN, logger)
	if err != nil {
		return nil, nil, err
	}
	rs, err := store.NewRecordStore(db, driver, logger)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, rs, nil
}

func openCorpusDB(ctx context.Context) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Paths.CorpusDB), 0o755); err != nil {
		return nil, fmt.Errorf("create corpus dir: %w", err)
	}
	db, _, err := store.Open(ctx, cfg.Paths.CorpusDB, logger)
	return db, err
}

func newIndexer(embedder llm.Embedder, db *sql.DB) (*corpus.Indexer, error) {
	chunker := corpus.NewChunker(cfg.Corpus.ChunkSize, cfg.Corpus.ChunkOverlap)
	return corpus.NewIndexer(chunker, embedder, db, logger)
}

// runBuild is the extraction pipeline: list documents, extract concurrently,
// rebuild the record tables, and write the CSV and XLSX exports.
func runBuild(ctx context.Context) error {
	docs, err := ingest.ListDocuments(cfg.Paths.InvoicesDir)
	if err != nil {
		return err
	}

	batch, err := ingest.ExtractAll(ctx, docs, extract.New(logger), cfg.Extract.Concurrency, logger)
	if err != nil {
		return err
	}
	for _, w := range batch.Warnings {
		logger.Warn("build.extract.warning", "detail", w)
	}

	invoices := make([]entity.Invoice, 0, len(batch.Results))
	entries := make([]entity.AttendanceEntry, 0)
	for _, res := range batch.Results {
		invoices = append(invoices, res.Invoice)
		entries = append(entries, res.Entries...)
	}

	db, rs, err := openRecords(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := rs.Rebuild(ctx, invoices, entries); err != nil {
		return err
	}
	snap, err := rs.Snapshot(ctx)
	if err != nil {
		return err
	}

	if err := store.WriteCSV(snap, cfg.Paths.SummaryCSV, cfg.Paths.AttendanceCSV, logger); err != nil {
		return err
	}
	workbook, err := store.WriteXLSX(snap, logger)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfg.Paths.WorkbookXLSX, workbook, 0o644); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	logger.Info("build.ok", "invoices", len(invoices), "attendance_entries", len(entries))
	return nil
}

// runIndex rebuilds the searchable corpus from the current record tables.
func runIndex(ctx context.Context, embedder llm.Embedder) error {
	db, rs, err := openRecords(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	snap, err := rs.Snapshot(ctx)
	if err != nil {
		return err
	}
	agg := aggregate.New(logger).Build(snap)
	texts := corpus.Compose(snap, agg)

	corpusDB, err := openCorpusDB(ctx)
	if err != nil {
		return err
	}
	defer corpusDB.Close()

	indexer, err := newIndexer(embedder, corpusDB)
	if err != nil {
		return err
	}
	chunks, err := indexer.Rebuild(ctx, texts)
	if err != nil {
		return err
	}
	logger.Info("index.ok", "chunks", chunks)
	return nil
}
