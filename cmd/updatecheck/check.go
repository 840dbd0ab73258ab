package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tsukumogami/updatecheck"
	"github.com/tsukumogami/updatecheck/internal/batch"
	"github.com/tsukumogami/updatecheck/internal/errmsg"
	"github.com/tsukumogami/updatecheck/internal/progress"
	"github.com/tsukumogami/updatecheck/internal/render"
)

var (
	checkSource        string
	checkOwner         string
	checkBaseURL       string
	checkFormat        string
	checkFailOnUpdate  bool
	checkFullChangelog bool
)

var checkCmd = &cobra.Command{
	Use:   "check <name> <current-version>",
	Short: "Check one crate or repository for a newer release",
	Long: `Check whether a newer release than <current-version> has been published.

<name> is a crate name for crates.io, or a repository name for GitHub and
Gitea. The owner may be given with --owner or as "owner/name"; a name in
that form selects GitHub unless --source says otherwise.

Examples:
  updatecheck check serde 1.0.200
  updatecheck check ripgrep 14.0.0 --source github --owner BurntSushi
  updatecheck check BurntSushi/ripgrep v14.0.0 --format json
  updatecheck check forgejo/forgejo 8.0.0 --source gitea --base-url https://codeberg.org
  updatecheck check serde 1.0.200 --fail-on-update    # exit 10 when outdated`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		req := checkRequest{
			target: batch.Target{
				Name:    args[0],
				Source:  checkSource,
				Owner:   checkOwner,
				BaseURL: checkBaseURL,
				Current: args[1],
			},
			format:        checkFormat,
			failOnUpdate:  checkFailOnUpdate,
			fullChangelog: checkFullChangelog,
		}
		exitWithCode(runCheck(globalCtx, req, os.Stdout, os.Stderr))
	},
}

func init() {
	checkCmd.Flags().StringVarP(&checkSource, "source", "s", "", "Release source: crates, github or gitea")
	checkCmd.Flags().StringVarP(&checkOwner, "owner", "o", "", "Repository owner (github, gitea)")
	checkCmd.Flags().StringVar(&checkBaseURL, "base-url", "", "Gitea instance URL, e.g. https://codeberg.org")
	checkCmd.Flags().StringVar(&checkFormat, "format", "", "Output format: text, json or yaml (default from config)")
	checkCmd.Flags().BoolVar(&checkFailOnUpdate, "fail-on-update", false, "Exit with code 10 when an update is available")
	checkCmd.Flags().BoolVar(&checkFullChangelog, "full-changelog", false, "Show every changelog line")
}

type checkRequest struct {
	target        batch.Target
	format        string
	failOnUpdate  bool
	fullChangelog bool
}

// runCheck performs one check and returns the process exit code. Results
// go to stdout; progress and text-mode errors go to stderr.
func runCheck(ctx context.Context, req checkRequest, stdout, stderr io.Writer) int {
	s, err := loadSettings()
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return ExitGeneral
	}

	format, err := s.format(req.format)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitUsage
	}

	src, name, err := req.target.Resolve()
	if err != nil {
		printError(stderr, err, nil)
		return exitCodeFor(err)
	}

	ro := s.renderOptions(stdout, req.fullChangelog)

	spinner := progress.NewSpinner(stderr)
	if !quietFlag && format == render.FormatText {
		spinner.Start(fmt.Sprintf("Checking %s...", src.Describe(name)))
	}
	info, err := updatecheck.Check(ctx, src, name, req.target.Current, s.checkOptions(newTransport())...)
	spinner.Stop()

	if err != nil {
		if format == render.FormatText {
			printError(stderr, err, &errmsg.ErrorContext{Name: name, Authenticated: s.authenticated(src)})
		} else if werr := render.WriteError(stdout, format, err, ro); werr != nil {
			fmt.Fprintf(stderr, "Error writing output: %v\n", werr)
		}
		return exitCodeFor(err)
	}

	if format == render.FormatText && quietFlag {
		err = updatecheck.Print(stdout, info, updatecheck.WithRenderOptions(ro))
	} else {
		err = render.Write(stdout, format, info, ro)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error writing output: %v\n", err)
		return ExitGeneral
	}

	if req.failOnUpdate && info.IsUpdateAvailable {
		return ExitUpdateAvailable
	}
	return ExitSuccess
}
