package main

import (
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the searchable corpus from the record tables",
	Long: `Composes descriptive text from the record tables and the aggregate
context, chunks and embeds it, and replaces the corpus index. Requires a
prior build.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		prov, err := newProvider(ctx)
		if err != nil {
			return err
		}
		defer prov.Close()
		return runIndex(ctx, prov.embedder)
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
