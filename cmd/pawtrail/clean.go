package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pawprintslab/pawtrail/internal/store"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete the derived outputs",
	Long: `Removes the record database, CSV and XLSX exports, and the corpus
index so the next build starts from nothing. Invoice source files are left
alone.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		targets := []string{
			cfg.Paths.SummaryCSV,
			cfg.Paths.AttendanceCSV,
			cfg.Paths.WorkbookXLSX,
			cfg.Paths.CorpusDB,
		}
		// A postgres records backend is shared infrastructure; only a
		// local database file is ours to delete.
		if !store.IsPostgresDSN(cfg.Paths.RecordsDSN) {
			targets = append(targets, cfg.Paths.RecordsDSN)
		}

		for _, path := range targets {
			if path == "" {
				continue
			}
			if err := os.Remove(path); err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return fmt.Errorf("remove %s: %w", path, err)
			}
			logger.Info("clean.removed", "path", path)
		}
		fmt.Println("Derived outputs removed.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
