package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage timepunch configuration file values.",
	Long: `Create, edit, and display the timepunch configuration file.

The configuration stores application-wide values:
- service.url / service.token / service.timeout_seconds
- directory.url
- storage.path
- tracking.default_type
- billing.default_hourly_rate
- sync.auto_reconcile`,
	Example: `
  # Create default config in $HOME/.timepunch.yaml
  timepunch config create

  # Show active config and source file
  timepunch config show

  # Open active config in editor (creates example if missing)
  timepunch config edit
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
