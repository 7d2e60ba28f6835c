package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"timepunch/config"
)

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Write a starter configuration file",
	Long: `Write a starter configuration file with commented defaults.

The file lands at the path given by --config, or at the location of the
config already in use, or at $HOME/.timepunch.yaml. An existing file is
left alone.`,
	Example: `
  # Seed $HOME/.timepunch.yaml
  timepunch config create
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := activeConfigPath()
		if err != nil {
			return err
		}
		written, err := seedConfigFile(path)
		if err != nil {
			return err
		}
		if !written {
			fmt.Printf("Config file already exists at: %s\n", path)
			return nil
		}
		fmt.Printf("New config file created at: %s\n", path)
		return nil
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the active configuration in $VISUAL or $EDITOR",
	Long: `Open the active configuration file in an editor.

$VISUAL wins over $EDITOR; with neither set the fallback is vi. A missing
config file is seeded with the starter template first, and the result is
validated once the editor exits.`,
	Example: `
  # Edit the active config
  timepunch config edit
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := activeConfigPath()
		if err != nil {
			return err
		}
		written, err := seedConfigFile(path)
		if err != nil {
			return err
		}
		if written {
			fmt.Printf("No config file found. Created starter config at: %s\n", path)
		}

		argv := editorArgv(os.Getenv("VISUAL"), os.Getenv("EDITOR"))
		editor := exec.Command(argv[0], append(argv[1:], path)...)
		editor.Stdin = os.Stdin
		editor.Stdout = os.Stdout
		editor.Stderr = os.Stderr
		if err := editor.Run(); err != nil {
			return fmt.Errorf("editor exited with an error: %w", err)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read edited config: %w", err)
		}
		if _, err := config.ValidateYAMLContent(content); err != nil {
			return fmt.Errorf("edited config is invalid (%s): %w", path, err)
		}
		fmt.Printf("Configuration saved and validated: %s\n", path)
		return nil
	},
}

// activeConfigPath picks the config location: the --config flag, then the
// file viper already loaded, then the home default.
func activeConfigPath() (string, error) {
	for _, candidate := range []string{cfgFile, viper.ConfigFileUsed()} {
		if strings.TrimSpace(candidate) != "" {
			return candidate, nil
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".timepunch.yaml"), nil
}

// seedConfigFile writes the starter template unless path already exists.
// It reports whether a new file was written.
func seedConfigFile(path string) (bool, error) {
	switch _, err := os.Stat(path); {
	case err == nil:
		return false, nil
	case !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(config.ExampleYAML()), 0o600); err != nil {
		return false, fmt.Errorf("write starter config: %w", err)
	}
	return true, nil
}

// editorArgv splits the editor setting into an argv, preferring visual.
func editorArgv(visual, fallback string) []string {
	for _, candidate := range []string{visual, fallback} {
		if fields := strings.Fields(candidate); len(fields) > 0 {
			return fields
		}
	}
	return []string{"vi"}
}

func init() {
	configCmd.AddCommand(configCreateCmd)
	configCmd.AddCommand(configEditCmd)
}
