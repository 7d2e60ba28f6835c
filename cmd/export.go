package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"timepunch/report"
	"timepunch/storage"
)

var (
	exportFormat string
	exportMode   string
	exportOutput string
	exportUser   string
	exportDays   int
	exportDBPath string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export cached time entries to CSV/Excel",
	Long: `Export time entries from the local SQLite cache.

Modes:
- raw: export each entry row
- daily: export the per-day rollup (hours, billable hours, entry count)

Output format can be selected explicitly via --format or inferred from --output extension.`,
	Example: `
  # Export raw rows to CSV
  timepunch export --mode raw --output ./entries.csv

  # Export raw rows to Excel
  timepunch export --mode raw --output ./entries.xlsx

  # Export a 30-day daily summary for one user
  timepunch export --mode daily --user u-17 --days 30 --output ./daily.csv
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := exportFormat
		if strings.TrimSpace(format) == "" {
			format = detectExportFormat(exportOutput)
		}

		store, err := openReportStore(exportDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.ListEntries(storage.ListFilters{UserID: exportUser})
		if err != nil {
			return err
		}

		mode := strings.TrimSpace(strings.ToLower(exportMode))
		switch mode {
		case "", "raw":
			writer, writerErr := report.WriterForFormat(format)
			if writerErr != nil {
				return writerErr
			}
			if err := writer.Write(exportOutput, entries); err != nil {
				return err
			}
			fmt.Printf("Export completed. Rows: %d, Mode: raw, Format: %s, File: %s\n", len(entries), format, exportOutput)
		case "daily":
			series := report.DailySeries(entries, exportDays, time.Now())
			if err := report.WriteDailySeries(exportOutput, format, series); err != nil {
				return err
			}
			fmt.Printf("Export completed. Days: %d, Mode: daily, Format: %s, File: %s\n", len(series), format, exportOutput)
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
	exportCmd.Flags().StringVarP(&exportUser, "user", "u", "", "Restrict to one user id")
	exportCmd.Flags().IntVar(&exportDays, "days", 7, "Trailing window for daily mode")
	exportCmd.Flags().StringVar(&exportDBPath, "db", "", "Path to local SQLite database (defaults to storage.path)")

	_ = exportCmd.MarkFlagRequired("output")
}
