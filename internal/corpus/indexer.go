// Package corpus composes descriptive text from the record tables, chunks
// it, embeds the chunks, and serves similarity searches over them.
package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/pawprintslab/pawtrail/internal/common"
	"github.com/pawprintslab/pawtrail/internal/llm"
)

// Indexer owns the searchable corpus. Rebuilds construct a complete new
// Index (and persist it) before an atomic pointer swap, so an in-flight
// search sees either the fully-old or fully-new corpus, never a partial one.
type Indexer struct {
	chunker  *Chunker
	embedder llm.Embedder
	db       *sql.DB
	logger   *slog.Logger

	current atomic.Pointer[Index]
}

func NewIndexer(chunker *Chunker, embedder llm.Embedder, db *sql.DB, logger *slog.Logger) (*Indexer, error) {
	if chunker == nil {
		return nil, common.MissingPrerequisite("corpus chunker")
	}
	if embedder == nil {
		return nil, common.MissingPrerequisite("embedding capability")
	}
	if db == nil {
		return nil, common.MissingPrerequisite("corpus database handle")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{chunker: chunker, embedder: embedder, db: db, logger: logger}, nil
}

// Rebuild replaces the corpus wholesale from the composed texts: chunk,
// embed, persist, then swap. Returns the chunk count. On any error the
// previous index (in memory and on disk) stays live.
func (ix *Indexer) Rebuild(ctx context.Context, texts []string) (int, error) {
	if len(texts) == 0 {
		return 0, common.MissingPrerequisite("composed corpus texts")
	}
	start := time.Now()

	pieces := ix.chunker.Split(strings.Join(texts, "\n"))
	if len(pieces) == 0 {
		return 0, common.MissingPrerequisite("non-empty corpus text")
	}

	vectors, err := ix.embedder.Embed(ctx, pieces)
	if err != nil {
		return 0, fmt.Errorf("embed corpus chunks: %w", err)
	}
	if len(vectors) != len(pieces) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(pieces))
	}

	chunks := make([]Chunk, len(pieces))
	for i, text := range pieces {
		chunks[i] = Chunk{
			ID:       uuid.New().String(),
			Position: i,
			Text:     text,
			Vector:   vectors[i],
		}
	}

	if err := ix.persist(ctx, chunks); err != nil {
		return 0, err
	}
	ix.current.Store(newIndex(chunks))

	ix.logger.Info("corpus.rebuild.ok",
		"texts", len(texts),
		"chunks", len(chunks),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return len(chunks), nil
}

// Load reads the persisted corpus into memory. Callers that need all
// database access up front (before serving queries) call this once; Search
// otherwise loads lazily on first use.
func (ix *Indexer) Load(ctx context.Context) error {
	idx, err := ix.load(ctx)
	if err != nil {
		return err
	}
	ix.current.Store(idx)
	return nil
}

// Search embeds the query and returns the top-k most similar chunk texts.
// When no index is in memory yet it is loaded from the corpus database.
func (ix *Indexer) Search(ctx context.Context, query string, k int) ([]string, error) {
	idx := ix.current.Load()
	if idx == nil {
		loaded, err := ix.load(ctx)
		if err != nil {
			return nil, err
		}
		ix.current.Store(loaded)
		idx = loaded
	}

	vecs, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(vecs))
	}
	return idx.search(vecs[0], k), nil
}

func (ix *Indexer) persist(ctx context.Context, chunks []Chunk) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin corpus persist: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, q := range []string{
		`DROP TABLE IF EXISTS corpus_chunks_staging`,
		`CREATE TABLE corpus_chunks_staging (
			position INTEGER PRIMARY KEY,
			id TEXT NOT NULL,
			content TEXT NOT NULL,
			embedding BLOB NOT NULL
		)`,
	} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("prepare corpus staging: %w", err)
		}
	}

	for _, c := range chunks {
		blob, err := encodeVector(c.Vector)
		if err != nil {
			return fmt.Errorf("chunk %d: %w", c.Position, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO corpus_chunks_staging (position, id, content, embedding) VALUES (?, ?, ?, ?)`,
			c.Position, c.ID, c.Text, blob,
		); err != nil {
			return fmt.Errorf("insert chunk %d: %w", c.Position, err)
		}
	}

	for _, q := range []string{
		`DROP TABLE IF EXISTS corpus_chunks`,
		`ALTER TABLE corpus_chunks_staging RENAME TO corpus_chunks`,
	} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("swap corpus tables: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit corpus persist: %w", err)
	}
	return nil
}

func (ix *Indexer) load(ctx context.Context) (*Index, error) {
	rows, err := ix.db.QueryContext(ctx,
		`SELECT position, id, content, embedding FROM corpus_chunks ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("%w: corpus not indexed: %v", common.ErrMissingPrerequisite, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var chunks []Chunk
	for rows.Next() {
		var c Chunk
		var blob []byte
		if err := rows.Scan(&c.Position, &c.ID, &c.Text, &blob); err != nil {
			return nil, fmt.Errorf("scan corpus chunk: %w", err)
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", c.Position, err)
		}
		c.Vector = vec
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate corpus chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil, common.MissingPrerequisite("indexed corpus chunks")
	}

	ix.logger.Info("corpus.loaded", "chunks", len(chunks))
	return newIndex(chunks), nil
}
