package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pawprintslab/pawtrail/internal/common"
)

var (
	envFile      string
	overrideFile string
	verbose      bool

	cfg    *common.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pawtrail",
	Short: "Extract, aggregate, and query dog daycare invoices",
	Long: `Pawtrail reads free-form invoice text files, extracts typed invoice
records and attendance dates, persists them to summary tables, and answers
questions about them with a structured-first, search-fallback strategy.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "env file to load before reading configuration")
	rootCmd.PersistentFlags().StringVarP(&overrideFile, "config", "c", "", "JSON config overrides file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func setup(cmd *cobra.Command, args []string) error {
	// Missing env file is fine; env vars and defaults still apply.
	_ = godotenv.Load(envFile)

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg = common.LoadConfig()
	if overrideFile != "" {
		if err := cfg.ApplyOverrides(overrideFile); err != nil {
			return err
		}
	}
	return nil
}
