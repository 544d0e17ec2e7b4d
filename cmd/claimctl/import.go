package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/claimtrack/internal/importer"
	"github.com/dmehra2102/prod-golang-projects/claimtrack/internal/repository"
	"github.com/dmehra2102/prod-golang-projects/claimtrack/pkg/metrics"
)

var (
	importFile string
	importMode string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import claims from a CSV export",
	Long: "Reads a claims CSV and loads it row by row. Rows that fail validation " +
		"are reported and skipped; the rest import anyway. --mode replace-all wipes " +
		"existing claims first, --mode append leaves them in place. There is no " +
		"default mode: wiping the table must be asked for explicitly.",
	RunE: runImport,
}

func init() {
	f := importCmd.Flags()
	f.StringVar(&importFile, "file", "", "Path to the claims CSV (required)")
	f.StringVar(&importMode, "mode", "", "Import mode: replace-all or append (required)")
	_ = importCmd.MarkFlagRequired("file")
	_ = importCmd.MarkFlagRequired("mode")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	mode, err := importer.ParseMode(importMode)
	if err != nil {
		return err
	}

	_, zapLog, db := setup()
	defer func() { _ = zapLog.Sync() }()

	file, err := os.Open(importFile)
	if err != nil {
		return fmt.Errorf("opening %s: %w", importFile, err)
	}
	defer file.Close()

	collector := metrics.NewCollector("claimctl")
	im := importer.New(repository.NewClaimRepository(db), collector, zapLog)

	result, err := im.ImportCSV(context.Background(), file, mode)
	if err != nil {
		zapLog.Error("import failed", zap.Error(err))
		return err
	}

	for _, rowErr := range result.Errors {
		fmt.Fprintf(os.Stderr, "row %d: %s\n", rowErr.Row, rowErr.Message)
	}

	fmt.Printf("Import complete: %d imported, %d cleared, %d rows rejected\n",
		result.Imported, result.Cleared, len(result.Errors))
	return nil
}
