package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"timesift/output"
	"timesift/storage"
)

var (
	exportFormat string
	exportMode   string
	exportOutput string
	exportDBPath string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored timesheet entries from SQLite to CSV/Excel",
	Long: `Export timesheet entries from SQLite.

Modes:
- raw: export each stored entry (date, day, hours, activity, client, project, employee)
- daily: export per-day aggregates (work hours, PTO hours, totals, entry counts)

Output format can be selected explicitly via --format or inferred from --output extension.`,
	Example: `
  # Export raw entries to CSV
  timesift export --mode raw --db ./timesift.db --output ./entries.csv

  # Export raw entries to Excel
  timesift export --mode raw --db ./timesift.db --output ./entries.xlsx

  # Export daily summary to CSV
  timesift export --mode daily --db ./timesift.db --output ./daily-summary.csv

  # Force Excel format independent of extension
  timesift export --mode daily --format excel --db ./timesift.db --output ./daily-summary.out
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := exportFormat
		if strings.TrimSpace(format) == "" {
			format = detectExportFormat(exportOutput)
		}

		store, err := storage.OpenSQLite(exportDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.ListEntries()
		if err != nil {
			return err
		}

		mode := strings.TrimSpace(strings.ToLower(exportMode))
		switch mode {
		case "", "raw":
			writer, writerErr := output.WriterForFormat(format)
			if writerErr != nil {
				return writerErr
			}
			if err := writer.Write(exportOutput, entries); err != nil {
				return err
			}
			fmt.Printf("Export completed. Rows: %d, Mode: raw, Format: %s, File: %s\n", len(entries), format, exportOutput)
		case "daily":
			summaries := output.BuildDailySummaries(entries)
			if err := output.WriteDailySummaries(exportOutput, format, summaries); err != nil {
				return err
			}
			fmt.Printf("Export completed. Days: %d, Mode: daily, Format: %s, File: %s\n", len(summaries), format, exportOutput)
		default:
			return fmt.Errorf("unsupported export mode: %s (supported: raw, daily)", exportMode)
		}
		return nil
	},
}

func detectExportFormat(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "csv":
		return "csv"
	case "xlsx", "xlsm", "xls":
		return "excel"
	default:
		return "csv"
	}
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportMode, "mode", "raw", "Export mode: raw|daily")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: csv|excel (optional, inferred from output extension)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path")
	exportCmd.Flags().StringVar(&exportDBPath, "db", "./timesift.db", "Path to local SQLite database")

	_ = exportCmd.MarkFlagRequired("output")
}
