package main

import (
	"github.com/spf13/cobra"

	"github.com/pawprintslab/pawtrail/internal/generate"
)

var (
	generateFrom string
	generateTo   string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Synthesize sample invoice files into the invoices directory",
	Long: `Writes one sample invoice text file per month over the configured
range, with attendance on every Monday. Pricing comes from the generate
config section (base cost per day and percentage discount).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate()
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateFrom, "from", "", "first month to generate (YYYY-MM)")
	generateCmd.Flags().StringVar(&generateTo, "to", "", "last month to generate (YYYY-MM)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate() error {
	fromMonth := generateFrom
	if fromMonth == "" {
		fromMonth = cfg.Generate.FromMonth
	}
	toMonth := generateTo
	if toMonth == "" {
		toMonth = cfg.Generate.ToMonth
	}

	from, err := generate.ParseMonth(fromMonth)
	if err != nil {
		return err
	}
	to, err := generate.ParseMonth(toMonth)
	if err != nil {
		return err
	}

	files, err := generate.Invoices(generate.Config{
		ProviderName:    generate.SampleProviderName,
		ProviderAddress: generate.SampleProviderAddress,
		ClientName:      generate.SampleClientName,
		ClientAddress:   generate.SampleClientAddress,
		SubjectName:     generate.SampleSubjectName,
		CostPerDay:      cfg.Generate.CostPerDay,
		DiscountPercent: cfg.Generate.DiscountPercent,
	}, from, to)
	if err != nil {
		return err
	}
	if err := generate.WriteAll(cfg.Paths.InvoicesDir, files, logger); err != nil {
		return err
	}

	logger.Info("generate.ok", "files", len(files), "dir", cfg.Paths.InvoicesDir,
		"from", fromMonth, "to", toMonth)
	return nil
}
