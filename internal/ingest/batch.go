package ingest

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/pawprintslab/pawtrail/internal/entity"
	"github.com/pawprintslab/pawtrail/internal/extract"
)

// BatchResult collects the per-document outcomes of one extraction run, in
// document order, plus every tolerated warning.
type BatchResult struct {
	Results  []extract.Result
	Warnings []string
}

// ExtractAll runs the extractor over every document. Documents are
// independent, so extraction fans out across workers; results land back in
// their original slots so the merged output is deterministic regardless of
// scheduling. Only context cancellation aborts the batch.
func ExtractAll(ctx context.Context, docs []entity.Document, ex *extract.Extractor, concurrency int, logger *slog.Logger) (BatchResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]extract.Result, len(docs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = ex.Extract(doc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchResult{}, err
	}

	out := BatchResult{Results: results}
	for _, r := range results {
		out.Warnings = append(out.Warnings, r.Warnings...)
	}
	logger.Info("ingest.batch.done",
		"documents", len(docs),
		"warnings", len(out.Warnings),
	)
	return out, nil
}
