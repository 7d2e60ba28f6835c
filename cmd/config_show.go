package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"timepunch/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values.`,
	Example: `
  # Show active configuration
  timepunch config show
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			fmt.Println("Invalid config:", err)
			return
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
			fmt.Println("Configuration:")
			fmt.Printf("service.url: %s\n", cfg.Service.URL)
			fmt.Printf("service.token: %s\n", maskToken(cfg.Service.Token))
			fmt.Printf("service.timeout_seconds: %d\n", cfg.Service.TimeoutSeconds)
			fmt.Printf("directory.url: %s\n", cfg.DirectoryURL())
			fmt.Printf("storage.path: %s\n", cfg.Storage.Path)
			fmt.Printf("tracking.default_type: %s\n", cfg.Tracking.DefaultType)
			fmt.Printf("billing.default_hourly_rate: %.2f\n", cfg.Billing.DefaultHourlyRate)
			fmt.Printf("sync.auto_reconcile: %t\n", cfg.Sync.AutoReconcile)
		}
	},
}

func maskToken(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) <= 4 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
