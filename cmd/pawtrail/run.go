package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/pawprintslab/pawtrail/internal/ingest"
)

var watchInvoices bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build, index, and answer questions interactively",
	Long: `Runs the whole workflow: extract and rebuild the record tables,
rebuild the corpus index, then read questions from stdin until EOF or
"exit". With --watch, changes in the invoices directory trigger an
automatic rebuild of tables and index between questions.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVarP(&watchInvoices, "watch", "w", false, "rebuild automatically when invoice files change")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	prov, err := newProvider(ctx)
	if err != nil {
		return err
	}
	defer prov.Close()

	// Guards the sqlite files: a watch-triggered rebuild must not overlap
	// a per-question snapshot/corpus load, so readers always see a complete
	// build. Resolver construction loads everything it needs into memory
	// under the lock; the LLM calls themselves run outside it.
	var rebuildMu sync.Mutex

	rebuild := func() error {
		rebuildMu.Lock()
		defer rebuildMu.Unlock()
		if err := runBuild(ctx); err != nil {
			return err
		}
		return runIndex(ctx, prov.embedder)
	}
	if err := rebuild(); err != nil {
		return err
	}

	if watchInvoices {
		ticks, err := ingest.Watch(ctx, ingest.WatchConfig{
			Root:     cfg.Paths.InvoicesDir,
			Debounce: 2 * time.Second,
		}, logger)
		if err != nil {
			return err
		}
		go func() {
			for range ticks {
				if err := rebuild(); err != nil {
					logger.Error("watch.rebuild.failed", "error", err)
				}
			}
		}()
	}

	fmt.Println(`Ask about the invoices (type "exit" to quit).`)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		// The resolver is rebuilt per question so --watch rebuilds are
		// reflected in the narrative it answers from.
		rebuildMu.Lock()
		r, cleanup, err := newResolver(ctx)
		rebuildMu.Unlock()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			continue
		}
		answer, err := r.Resolve(ctx, question)
		cleanup()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			continue
		}
		fmt.Println(answer.Text)
	}
	return scanner.Err()
}
