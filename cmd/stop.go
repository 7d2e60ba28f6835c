package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"timepunch/internal/durcalc"
)

var (
	stopUser   string
	stopDBPath string
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the user's running timer and commit the entry",
	Long: `Stop the user's running timer.

Duration is computed from the wall-clock start and stop times. Billable
entries also get their amount computed from the hourly rate. If the remote
service is unreachable the completed entry is committed locally and synced
later with "timepunch sync".`,
	Example: `
  # Stop the running timer
  timepunch stop --user u-17
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := buildEngine(stopDBPath)
		if err != nil {
			return err
		}
		defer engine.Close()

		if _, err := engine.attachActiveSession(stopUser); err != nil {
			return err
		}

		entry, err := engine.controller.Stop(cmd.Context(), stopUser)
		if err != nil {
			return err
		}

		fmt.Printf("Timer stopped. Entry: %s, Duration: %s", entry.ID, durcalc.FormatDuration(entry.Duration))
		if entry.Billable {
			fmt.Printf(", Amount: %.2f", entry.TotalAmount)
		}
		if entry.PendingSync {
			fmt.Print(", Pending sync: yes")
		}
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)

	stopCmd.Flags().StringVarP(&stopUser, "user", "u", "", "User id the timer belongs to")
	stopCmd.Flags().StringVar(&stopDBPath, "db", "", "Path to local SQLite database (defaults to storage.path)")

	_ = stopCmd.MarkFlagRequired("user")
}
