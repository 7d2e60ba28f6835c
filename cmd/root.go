package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"timepunch/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "timepunch",
	Short: "Track working time against a remote timesheet service, online or offline.",
	Long: `timepunch is a time tracking client with an offline-first core.

Timers are started and stopped against a remote time-entry service. When the
service is unreachable, entries are committed to a local SQLite database and
replayed in order once connectivity returns. Completed entries can be rolled
up into totals, per-project and per-user reports, or exported to CSV/Excel.`,
	Example: `
  # Create configuration file
  timepunch config create

  # Start and stop a timer
  timepunch start --user u-17 --project "Website Redesign" --description "wireframes" --billable --rate 50
  timepunch stop --user u-17

  # Record a manual entry
  timepunch add --user u-17 --project "Website Redesign" --description "standup" --duration 0:30

  # Show totals and per-project rollups
  timepunch report --user u-17

  # Replay entries recorded while offline
  timepunch sync

  # Serve the local JSON API
  timepunch serve --port 8080
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.timepunch.yaml, then ./.timepunch.yaml)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".timepunch")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found. Create one first with: timepunch config create")
	}
}
