package batch

import (
	"fmt"
	"strings"

	"github.com/tsukumogami/updatecheck/internal/checkerr"
)

// Entry is the flattened, serializable form of a Result.
type Entry struct {
	Target          string `json:"target" yaml:"target"`
	Current         string `json:"current" yaml:"current"`
	Latest          string `json:"latest,omitempty" yaml:"latest,omitempty"`
	UpdateAvailable bool   `json:"update_available" yaml:"update_available"`
	URL             string `json:"url,omitempty" yaml:"url,omitempty"`
	Error           string `json:"error,omitempty" yaml:"error,omitempty"`
	Kind            string `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// Failed reports whether the check behind the entry failed.
func (e Entry) Failed() bool {
	return e.Error != ""
}

// Report holds the outcome of a batch run.
type Report struct {
	Total    int     `json:"total" yaml:"total"`
	Updates  int     `json:"updates" yaml:"updates"`
	UpToDate int     `json:"up_to_date" yaml:"up_to_date"`
	Failed   int     `json:"failed" yaml:"failed"`
	Entries  []Entry `json:"results" yaml:"results"`
}

// NewReport summarizes results, keeping their order.
func NewReport(results []Result) *Report {
	r := &Report{Total: len(results), Entries: make([]Entry, 0, len(results))}
	for _, res := range results {
		e := Entry{
			Target:  res.Target.Label(),
			Current: res.Target.Current,
		}
		switch {
		case res.Err != nil:
			r.Failed++
			e.Error = res.Err.Error()
			e.Kind = checkerr.KindOf(res.Err).String()
		case res.Info.IsUpdateAvailable:
			r.Updates++
			e.Current = res.Info.CurrentVersion.String()
			e.Latest = res.Info.LatestVersion.String()
			e.UpdateAvailable = true
			e.URL = res.Info.URL
		default:
			r.UpToDate++
			e.Current = res.Info.CurrentVersion.String()
			e.Latest = res.Info.LatestVersion.String()
		}
		r.Entries = append(r.Entries, e)
	}
	return r
}

// Table renders the report as aligned plain-text columns followed by a
// one-line tally.
func (r *Report) Table() string {
	width := len("TARGET")
	for _, e := range r.Entries {
		width = max(width, len(e.Target))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-*s  %-12s  %-12s  %s\n", width, "TARGET", "CURRENT", "LATEST", "STATUS")
	for _, e := range r.Entries {
		latest, status := e.Latest, "up to date"
		switch {
		case e.Failed():
			latest, status = "-", e.Kind
		case e.UpdateAvailable:
			status = "update available"
		}
		fmt.Fprintf(&sb, "%-*s  %-12s  %-12s  %s\n", width, e.Target, e.Current, latest, status)
	}
	fmt.Fprintf(&sb, "\n%d checked: %d update(s), %d up to date, %d failed\n", r.Total, r.Updates, r.UpToDate, r.Failed)
	return sb.String()
}

// Summary returns a markdown summary of the run for CI job summaries and
// pull request comments.
func (r *Report) Summary() string {
	s := "| Metric | Count |\n|--------|-------|\n"
	s += fmt.Sprintf("| Updates | %d |\n", r.Updates)
	s += fmt.Sprintf("| Up to date | %d |\n", r.UpToDate)
	s += fmt.Sprintf("| Failed | %d |\n", r.Failed)
	s += fmt.Sprintf("| **Total** | **%d** |\n", r.Total)

	var updates, failures []Entry
	for _, e := range r.Entries {
		switch {
		case e.Failed():
			failures = append(failures, e)
		case e.UpdateAvailable:
			updates = append(updates, e)
		}
	}

	if len(updates) > 0 {
		s += "\n### Updates available\n\n"
		for _, e := range updates {
			if e.URL != "" {
				s += fmt.Sprintf("- **%s**: %s → [%s](%s)\n", e.Target, e.Current, e.Latest, e.URL)
			} else {
				s += fmt.Sprintf("- **%s**: %s → %s\n", e.Target, e.Current, e.Latest)
			}
		}
	}

	if len(failures) > 0 {
		s += "\n### Failures\n\n"
		for _, e := range failures {
			s += fmt.Sprintf("- **%s**: %s\n", e.Target, e.Kind)
		}
	}
	return s
}
