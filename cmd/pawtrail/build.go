package main

import (
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Extract invoices and rebuild the record tables and exports",
	Long: `Reads every invoice text file from the invoices directory, extracts
typed records and attendance dates, rebuilds the record tables, and writes
the CSV and XLSX exports.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
