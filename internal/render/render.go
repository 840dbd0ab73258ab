// Package render turns check results into terminal text, JSON or YAML.
// Rendering never fails on the content of a result; the only errors
// returned come from the writer.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/tsukumogami/updatecheck/internal/checkerr"
	"github.com/tsukumogami/updatecheck/internal/resolve"
)

// Options controls text rendering. The zero value renders plain text
// without icons and with the default changelog length.
type Options struct {
	// Color enables ANSI styling.
	Color bool

	// Icons prefixes headline lines with emoji.
	Icons bool

	// MaxChangelogLines caps the changelog section. Zero selects
	// DefaultMaxChangelogLines.
	MaxChangelogLines int

	// FullChangelog shows every changelog line.
	FullChangelog bool
}

// DefaultOptions matches the classic output: icons on, no colour.
func DefaultOptions() Options {
	return Options{Icons: true, MaxChangelogLines: DefaultMaxChangelogLines}
}

func (o Options) changelogLimit() int {
	switch {
	case o.FullChangelog:
		return 0
	case o.MaxChangelogLines <= 0:
		return DefaultMaxChangelogLines
	default:
		return o.MaxChangelogLines
	}
}

type styles struct {
	headline lipgloss.Style
	version  lipgloss.Style
	label    lipgloss.Style
	link     lipgloss.Style
	current  lipgloss.Style
	errKind  lipgloss.Style
}

func newStyles(color bool) styles {
	r := lipgloss.NewRenderer(io.Discard)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return styles{
		headline: r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		version:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		label:    r.NewStyle().Foreground(lipgloss.Color("245")),
		link:     r.NewStyle().Underline(true).Foreground(lipgloss.Color("63")),
		current:  r.NewStyle().Foreground(lipgloss.Color("241")),
		errKind:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	}
}

func icon(opts Options, emoji string) string {
	if !opts.Icons {
		return ""
	}
	return emoji + "  "
}

// Text renders info as human-readable text.
//
// When an update is available the result is a block with a headline, the
// latest version, the changelog section (left out when there are no notes)
// and the URL. Otherwise it is a single line naming the current version.
// A nil info renders as "".
func Text(info *resolve.UpdateInfo, opts Options) string {
	if info == nil {
		return ""
	}
	st := newStyles(opts.Color)

	if !info.IsUpdateAvailable {
		subject := "You are"
		if info.Name != "" {
			subject = info.Name + " is"
		}
		return fmt.Sprintf("%s%s up to date %s",
			icon(opts, "✅"), subject, st.current.Render("(current version: "+info.CurrentVersion.String()+")"))
	}

	lines := []string{
		icon(opts, "🚀") + st.headline.Render("A new version is available!"),
		icon(opts, "🔖") + st.label.Render("Latest version:") + " " + st.version.Render(info.LatestVersion.String()),
	}
	if cl := ChangelogLines(info.Changelog, opts.changelogLimit()); len(cl) > 0 {
		lines = append(lines, icon(opts, "📝")+st.label.Render("Changelog:"))
		lines = append(lines, cl...)
	}
	if info.URL != "" {
		lines = append(lines, icon(opts, "🌐")+st.label.Render("More info:")+" "+st.link.Render(info.URL))
	}
	return strings.Join(lines, "\n")
}

// Fprint writes Text(info, opts) followed by a newline. Nothing is written
// for a nil info.
func Fprint(w io.Writer, info *resolve.UpdateInfo, opts Options) error {
	if info == nil {
		return nil
	}
	_, err := fmt.Fprintln(w, Text(info, opts))
	return err
}

// ErrorLine renders err as one line led by its kind, e.g.
// "not found: crates.io:nope: crate nope not found".
func ErrorLine(err error, opts Options) string {
	if err == nil {
		return ""
	}
	st := newStyles(opts.Color)
	kind := checkerr.KindOf(err)
	msg := strings.ReplaceAll(Sanitize(err.Error()), "\n", " ")
	return icon(opts, "❌") + st.errKind.Render(kind.String()+":") + " " + msg
}
