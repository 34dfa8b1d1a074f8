package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pawprintslab/pawtrail/internal/aggregate"
	"github.com/pawprintslab/pawtrail/internal/resolver"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer one question about the invoices",
	Long: `Answers a question from the aggregate context first; when the model
signals the context is not enough, falls back to a similarity search over
the corpus index. Requires a prior build and index.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		r, cleanup, err := newResolver(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		answer, err := r.Resolve(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Println(answer.Text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}

// newResolver assembles the full question-answering stack: record snapshot,
// aggregate narrative, corpus indexer, LLM provider. The returned cleanup
// closes every handle it opened.
func newResolver(ctx context.Context) (*resolver.Resolver, func(), error) {
	prov, err := newProvider(ctx)
	if err != nil {
		return nil, nil, err
	}

	db, rs, err := openRecords(ctx)
	if err != nil {
		prov.Close()
		return nil, nil, err
	}

	cleanup := func() {
		db.Close()
		prov.Close()
	}

	snap, err := rs.Snapshot(ctx)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	narrative := aggregate.Narrative(aggregate.New(logger).Build(snap))

	corpusDB, err := openCorpusDB(ctx)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	indexer, err := newIndexer(prov.embedder, corpusDB)
	if err != nil {
		corpusDB.Close()
		cleanup()
		return nil, nil, err
	}
	// Pull the persisted corpus into memory now, so answering a question
	// performs no database reads that could race a concurrent rebuild.
	if err := indexer.Load(ctx); err != nil {
		corpusDB.Close()
		cleanup()
		return nil, nil, err
	}

	r, err := resolver.New(narrative, indexer, prov.generator, resolver.Config{
		TopK:   cfg.Query.TopK,
		Marker: cfg.Query.Marker,
	}, logger)
	if err != nil {
		corpusDB.Close()
		cleanup()
		return nil, nil, err
	}

	full := func() {
		corpusDB.Close()
		cleanup()
	}
	return r, full, nil
}
