// Package resolver answers free-form questions with a two-tier strategy:
// a structured attempt grounded in the aggregate narrative, then a single
// similarity-search fallback when the structured tier signals insufficiency.
package resolver

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pawprintslab/pawtrail/internal/common"
	"github.com/pawprintslab/pawtrail/internal/llm"
)

// Searcher is the slice of the corpus indexer the resolver needs.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]string, error)
}

// DefaultTopK is the number of corpus snippets retrieved on fallback.
const DefaultTopK = 5

// Tier names which attempt produced the returned answer.
type Tier string

const (
	TierStructured Tier = "structured"
	TierFallback   Tier = "fallback"
)

// Answer is a resolved question: the generated text (trimmed) and the tier
// that produced it.
type Answer struct {
	Text string
	Tier Tier
}

type Config struct {
	// TopK bounds the fallback similarity search. Zero means DefaultTopK.
	TopK int
	// Marker overrides the insufficiency phrase. Empty means
	// DefaultInsufficiencyMarker.
	Marker string
}

// Resolver orchestrates the two tiers. It never retries: one structured
// generate, at most one search plus one fallback generate per question.
type Resolver struct {
	narrative string
	searcher  Searcher
	generator llm.Generator
	topK      int
	marker    string
	logger    *slog.Logger
}

func New(narrative string, searcher Searcher, generator llm.Generator, cfg Config, logger *slog.Logger) (*Resolver, error) {
	if strings.TrimSpace(narrative) == "" {
		return nil, common.MissingPrerequisite("aggregate narrative")
	}
	if searcher == nil {
		return nil, common.MissingPrerequisite("corpus searcher")
	}
	if generator == nil {
		return nil, common.MissingPrerequisite("generation capability")
	}
	if logger == nil {
		logger = slog.Default()
	}
	topK := cfg.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	marker := cfg.Marker
	if marker == "" {
		marker = DefaultInsufficiencyMarker
	}
	return &Resolver{
		narrative: narrative,
		searcher:  searcher,
		generator: generator,
		topK:      topK,
		marker:    marker,
		logger:    logger,
	}, nil
}

// Resolve runs the structured attempt and, when its output contains the
// insufficiency marker, the single fallback hop. The fallback's answer is
// returned as-is even if it is itself unhelpful; insufficiency is control
// flow at the first tier only.
func (r *Resolver) Resolve(ctx context.Context, question string) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, common.MissingPrerequisite("question text")
	}
	start := time.Now()

	out, err := r.generator.Generate(ctx, structuredPrompt(r.narrative, question, r.marker))
	if err != nil {
		return Answer{}, common.WrapError(err, "structured answer attempt failed")
	}
	out = strings.TrimSpace(out)

	if !strings.Contains(out, r.marker) {
		r.logger.Info("resolve.ok",
			"tier", TierStructured,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return Answer{Text: out, Tier: TierStructured}, nil
	}

	r.logger.Info("resolve.fallback", "top_k", r.topK)

	snippets, err := r.searcher.Search(ctx, question, r.topK)
	if err != nil {
		return Answer{}, common.WrapError(err, "fallback corpus search failed")
	}
	if len(snippets) == 0 {
		return Answer{}, common.MissingPrerequisite("corpus snippets for fallback")
	}

	out, err = r.generator.Generate(ctx, fallbackPrompt(snippets, question))
	if err != nil {
		return Answer{}, common.WrapError(err, "fallback answer attempt failed")
	}

	r.logger.Info("resolve.ok",
		"tier", TierFallback,
		"snippets", len(snippets),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Answer{Text: strings.TrimSpace(out), Tier: TierFallback}, nil
}
