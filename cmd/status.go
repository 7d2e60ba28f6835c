package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"timepunch/internal/durcalc"
)

var (
	statusUser   string
	statusDBPath string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the user's running timer and pending sync backlog",
	Example: `
  # Show the current timer
  timepunch status --user u-17
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := buildEngine(statusDBPath)
		if err != nil {
			return err
		}
		defer engine.Close()

		if _, err := engine.attachActiveSession(statusUser); err != nil {
			return err
		}

		entry, active := engine.controller.CurrentSession(statusUser)
		if !active {
			fmt.Printf("No timer running for user %s.\n", statusUser)
		} else {
			fmt.Printf(
				"Timer running. Entry: %s, Project: %s, Elapsed: %s\n",
				entry.ID,
				entry.ProjectName(),
				durcalc.FormatDuration(entry.Duration),
			)
		}

		pending, err := engine.queue.PendingCount()
		if err != nil {
			return err
		}
		if pending > 0 {
			fmt.Printf("Entries awaiting sync: %d (run: timepunch sync)\n", pending)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusUser, "user", "u", "", "User id to inspect")
	statusCmd.Flags().StringVar(&statusDBPath, "db", "", "Path to local SQLite database (defaults to storage.path)")

	_ = statusCmd.MarkFlagRequired("user")
}
