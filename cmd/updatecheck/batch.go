package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tsukumogami/updatecheck"
	"github.com/tsukumogami/updatecheck/internal/batch"
	"github.com/tsukumogami/updatecheck/internal/config"
	"github.com/tsukumogami/updatecheck/internal/log"
	"github.com/tsukumogami/updatecheck/internal/progress"
	"github.com/tsukumogami/updatecheck/internal/render"
	"github.com/tsukumogami/updatecheck/internal/transport"
)

var (
	batchFile         string
	batchFormat       string
	batchConcurrency  int
	batchFailOnUpdate bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Check every target listed in a TOML manifest",
	Long: `Check many crates and repositories concurrently.

The manifest lists one [[target]] table per artifact:

  [[target]]
  name = "serde"
  current = "1.0.200"

  [[target]]
  name = "ripgrep"
  source = "github"
  owner = "BurntSushi"
  current = "14.0.0"

  [[target]]
  name = "forgejo/forgejo"
  source = "gitea"
  base_url = "https://codeberg.org"
  current = "8.0.0"

Results are printed in manifest order. A failing target is reported and
does not stop the others. Concurrency defaults to UPDATECHECK_MAX_CONCURRENCY.

Examples:
  updatecheck batch -f targets.toml
  updatecheck batch -f targets.toml --format json
  updatecheck batch -f targets.toml --format markdown >> "$GITHUB_STEP_SUMMARY"`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		req := batchRequest{
			file:         batchFile,
			format:       batchFormat,
			concurrency:  batchConcurrency,
			failOnUpdate: batchFailOnUpdate,
		}
		exitWithCode(runBatch(globalCtx, req, os.Stdout, os.Stderr))
	},
}

func init() {
	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "updatecheck.toml", "Manifest file")
	batchCmd.Flags().StringVar(&batchFormat, "format", "", "Output format: text, json, yaml or markdown (default from config)")
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "j", 0, "Maximum checks in flight (default UPDATECHECK_MAX_CONCURRENCY)")
	batchCmd.Flags().BoolVar(&batchFailOnUpdate, "fail-on-update", false, "Exit with code 10 when any update is available")
}

type batchRequest struct {
	file         string
	format       string
	concurrency  int
	failOnUpdate bool
}

const formatMarkdown = "markdown"

// runBatch checks every manifest target and returns the exit code: 1 if
// any check failed, 10 with failOnUpdate if any update exists, else 0.
func runBatch(ctx context.Context, req batchRequest, stdout, stderr io.Writer) int {
	s, err := loadSettings()
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return ExitGeneral
	}

	var format render.Format
	if f := strings.ToLower(req.format); f == formatMarkdown || f == "md" {
		format = formatMarkdown
	} else if format, err = s.format(req.format); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitUsage
	}

	m, err := batch.LoadManifest(req.file)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitUsage
	}

	concurrency := req.concurrency
	if concurrency <= 0 {
		concurrency = config.GetMaxConcurrency()
	}
	opts := s.checkOptions(transport.NewLimited(newTransport(), concurrency))
	log.Default().Info("batch started", "targets", len(m.Targets), "concurrency", concurrency)

	counter := progress.NewCounter(stderr, len(m.Targets))
	results := batch.Run(ctx, m.Targets, func(ctx context.Context, src updatecheck.Source, name, current string) (*updatecheck.UpdateInfo, error) {
		return updatecheck.Check(ctx, src, name, current, opts...)
	}, batch.Options{
		Concurrency: concurrency,
		OnDone: func(r batch.Result) {
			counter.Done(outcomeOf(r))
		},
	})
	counter.Finish()

	report := batch.NewReport(results)
	switch format {
	case render.FormatJSON:
		err = render.JSON(stdout, report)
	case render.FormatYAML:
		err = render.YAML(stdout, report)
	case formatMarkdown:
		_, err = fmt.Fprint(stdout, report.Summary())
	default:
		_, err = fmt.Fprint(stdout, report.Table())
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error writing output: %v\n", err)
		return ExitGeneral
	}

	switch {
	case report.Failed > 0:
		return ExitGeneral
	case req.failOnUpdate && report.Updates > 0:
		return ExitUpdateAvailable
	}
	return ExitSuccess
}

func outcomeOf(r batch.Result) progress.Outcome {
	switch {
	case r.Err != nil:
		return progress.Failed
	case r.Info.IsUpdateAvailable:
		return progress.UpdateAvailable
	}
	return progress.UpToDate
}
