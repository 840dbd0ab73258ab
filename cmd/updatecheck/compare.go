package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tsukumogami/updatecheck/internal/semver"
)

var compareCmd = &cobra.Command{
	Use:   "compare <version-a> <version-b>",
	Short: "Compare two versions by semantic-versioning precedence",
	Long: `Compare two versions and print them in canonical form joined by <, = or >.
A leading "v" is accepted. Build metadata does not affect precedence.

Examples:
  updatecheck compare 1.0.0-alpha 1.0.0       # 1.0.0-alpha < 1.0.0
  updatecheck compare v1.2.3 1.2.3            # 1.2.3 = 1.2.3`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		exitWithCode(runCompare(args[0], args[1], os.Stdout, os.Stderr))
	},
}

func runCompare(a, b string, stdout, stderr io.Writer) int {
	va, err := semver.Parse(a)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitInvalidVersion
	}
	vb, err := semver.Parse(b)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitInvalidVersion
	}

	op := "="
	switch c := semver.Compare(va, vb); {
	case c < 0:
		op = "<"
	case c > 0:
		op = ">"
	}
	fmt.Fprintf(stdout, "%s %s %s\n", va, op, vb)
	return ExitSuccess
}
