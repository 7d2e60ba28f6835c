package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var syncDBPath string

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replay entries recorded while the remote service was unreachable",
	Long: `Replay queued entries against the remote time-entry service.

Entries are replayed in the order they were recorded. Local provisional ids
are replaced by server-assigned ids on success. If the service is still
unreachable the pass stops early and the remaining entries stay queued.`,
	Example: `
  # Replay the offline backlog
  timepunch sync
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := buildEngine(syncDBPath)
		if err != nil {
			return err
		}
		defer engine.Close()

		result, err := engine.queue.Reconcile(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf(
			"Sync completed. Attempted: %d, Synced: %d, Failed: %d, Remaining: %d\n",
			result.Attempted,
			result.Synced,
			result.Failed,
			result.Remaining,
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringVar(&syncDBPath, "db", "", "Path to local SQLite database (defaults to storage.path)")
}
