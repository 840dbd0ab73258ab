package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tsukumogami/updatecheck/internal/userconfig"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage updatecheck configuration",
	Long: `Manage updatecheck configuration settings.

Configuration is stored in $UPDATECHECK_HOME/config.toml
(default ~/.updatecheck/config.toml). Flags and environment variables
override these settings.

Examples:
  updatecheck config list
  updatecheck config get format
  updatecheck config set format json
  updatecheck config set github_api_url https://ghe.example.com/api/v3`,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get the current value of a configuration setting.
Tokens are shown masked.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := userconfig.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			exitWithCode(ExitGeneral)
		}

		value, ok := cfg.Get(args[0])
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown config key: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nAvailable keys:\n")
			printAvailableKeys(os.Stderr)
			exitWithCode(ExitUsage)
		}

		fmt.Println(value)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value. An empty value clears a token.

Examples:
  updatecheck config set color never
  updatecheck config set changelog_lines 0
  updatecheck config set github_token ghp_xxx`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		key, value := args[0], args[1]

		cfg, err := userconfig.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			exitWithCode(ExitGeneral)
		}

		if err := cfg.Set(key, value); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Fprintf(os.Stderr, "\nAvailable keys:\n")
			printAvailableKeys(os.Stderr)
			exitWithCode(ExitUsage)
		}

		if err := cfg.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
			exitWithCode(ExitGeneral)
		}

		shown, _ := cfg.Get(key)
		fmt.Printf("%s = %s\n", key, shown)
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration values",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := userconfig.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			exitWithCode(ExitGeneral)
		}
		printConfig(os.Stdout, cfg)
	},
}

func printConfig(w io.Writer, cfg *userconfig.Config) {
	for _, k := range userconfig.Keys() {
		v, _ := cfg.Get(k)
		fmt.Fprintf(w, "%-16s %s\n", k, v)
	}
}

func printAvailableKeys(w io.Writer) {
	keys := userconfig.AvailableKeys()
	for _, k := range userconfig.Keys() {
		fmt.Fprintf(w, "  %s - %s\n", k, keys[k])
	}
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
}
