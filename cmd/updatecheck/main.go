package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tsukumogami/updatecheck/internal/buildinfo"
	"github.com/tsukumogami/updatecheck/internal/log"
)

var (
	quietFlag   bool
	verboseFlag bool
	debugFlag   bool
	colorFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "updatecheck",
	Short: "Check crates.io, GitHub and Gitea for newer releases",
	Long: `updatecheck reports whether a newer release of a Rust crate or a
GitHub or Gitea repository has been published, comparing versions with
semantic-versioning precedence.

Examples:
  updatecheck check serde 1.0.200
  updatecheck check BurntSushi/ripgrep 14.0.0
  updatecheck check forgejo/forgejo 8.0.0 --source gitea --base-url https://codeberg.org
  updatecheck batch -f targets.toml`,
	Version:       buildinfo.Version(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetDefault(log.NewText(os.Stderr, determineLogLevel()))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Only print errors and available updates")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log each check outcome")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Log every request")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "", "Colored output: auto, always or never (default from config)")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(configCmd)
}

// determineLogLevel picks the log level from flags first, then from
// UPDATECHECK_DEBUG, UPDATECHECK_VERBOSE and UPDATECHECK_QUIET.
// The most verbose setting wins within each group.
func determineLogLevel() slog.Level {
	switch {
	case debugFlag:
		return slog.LevelDebug
	case verboseFlag:
		return slog.LevelInfo
	case quietFlag:
		return slog.LevelError
	}

	switch {
	case isTruthy(os.Getenv("UPDATECHECK_DEBUG")):
		return slog.LevelDebug
	case isTruthy(os.Getenv("UPDATECHECK_VERBOSE")):
		return slog.LevelInfo
	case isTruthy(os.Getenv("UPDATECHECK_QUIET")):
		return slog.LevelError
	}
	return slog.LevelWarn
}

// isTruthy reports whether an environment value means "enabled".
func isTruthy(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// globalCtx is canceled on SIGINT or SIGTERM so in-flight requests stop.
var globalCtx = context.Background()

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	globalCtx = ctx

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		exitWithCode(ExitUsage)
	}
}
