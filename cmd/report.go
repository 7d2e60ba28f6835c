package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"timepunch/config"
	"timepunch/internal/timeutil"
	"timepunch/report"
	"timepunch/storage"
	"timepunch/timeentry"
)

var (
	reportUser    string
	reportProject string
	reportFrom    string
	reportTo      string
	reportDays    int
	reportDBPath  string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Roll up locally cached entries into totals and breakdowns",
	Long: `Roll up completed entries from the local SQLite cache.

The report shows overall totals, per-project and per-user breakdowns, and a
daily series over a trailing window. Entries recorded offline count toward
the totals and are called out separately as pending.`,
	Example: `
  # Totals for one user
  timepunch report --user u-17

  # One project across a date range
  timepunch report --project "Website Redesign" --from 2026-08-01 --to 2026-08-31

  # Two-week daily series
  timepunch report --days 14
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openReportStore(reportDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		filters, err := reportFilters()
		if err != nil {
			return err
		}
		entries, err := store.ListEntries(filters)
		if err != nil {
			return err
		}

		printReport(cmd.OutOrStdout(), entries, reportDays)
		return nil
	},
}

func printReport(w io.Writer, entries []timeentry.Entry, windowDays int) {
	totals := report.BuildTotals(entries)
	fmt.Fprintf(w, "Entries: %d, Hours: %.2f, Billable hours: %.2f, Revenue: %.2f\n",
		totals.EntryCount, totals.TotalHours, totals.BillableHours, totals.Revenue)
	if totals.PendingCount > 0 {
		fmt.Fprintf(w, "Pending sync: %d entries included above\n", totals.PendingCount)
	}

	projects := report.ByProject(entries)
	if len(projects) > 0 {
		fmt.Fprintln(w, "\nBy project:")
		for _, name := range report.SortedProjectNames(projects) {
			rollup := projects[name]
			fmt.Fprintf(w, "  %-30s %8.2fh  %8.2fh billable  %10.2f\n",
				name, rollup.Hours, rollup.BillableHours, rollup.Revenue)
		}
	}

	users := report.ByUser(entries)
	if len(users) > 1 {
		fmt.Fprintln(w, "\nBy user:")
		for _, id := range report.SortedUserIDs(users) {
			rollup := users[id]
			fmt.Fprintf(w, "  %-20s %8.2fh  %5.1f%% billable\n", id, rollup.Hours, rollup.Productivity)
		}
	}

	fmt.Fprintln(w, "\nDaily:")
	for _, bucket := range report.DailySeries(entries, windowDays, time.Now()) {
		fmt.Fprintf(w, "  %s  %6.2fh  (%d entries)\n", timeutil.DayKey(bucket.Date), bucket.Hours, bucket.EntryCount)
	}
}

func reportFilters() (storage.ListFilters, error) {
	filters := storage.ListFilters{
		UserID:  reportUser,
		Project: reportProject,
	}
	if reportFrom != "" {
		parsed, err := timeutil.ParseDayKey(reportFrom)
		if err != nil {
			return storage.ListFilters{}, fmt.Errorf("invalid --from date (expected YYYY-MM-DD): %s", reportFrom)
		}
		filters.StartDate = parsed
	}
	if reportTo != "" {
		parsed, err := timeutil.ParseDayKey(reportTo)
		if err != nil {
			return storage.ListFilters{}, fmt.Errorf("invalid --to date (expected YYYY-MM-DD): %s", reportTo)
		}
		filters.EndDate = parsed
	}
	return filters, nil
}

// openReportStore resolves the database path from the flag or the active
// configuration. Reports never need the remote service.
func openReportStore(override string) (*storage.SQLiteStore, error) {
	path := override
	if path == "" {
		path = viper.GetString(config.KeyStoragePath)
	}
	return storage.OpenSQLite(path)
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportUser, "user", "u", "", "Restrict to one user id")
	reportCmd.Flags().StringVarP(&reportProject, "project", "p", "", "Restrict to one project name")
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "Start date (YYYY-MM-DD, inclusive)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "End date (YYYY-MM-DD, inclusive)")
	reportCmd.Flags().IntVar(&reportDays, "days", 7, "Trailing window for the daily series")
	reportCmd.Flags().StringVar(&reportDBPath, "db", "", "Path to local SQLite database (defaults to storage.path)")
}
