package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tsukumogami/updatecheck/internal/checkerr"
	"github.com/tsukumogami/updatecheck/internal/resolve"
)

// Format selects an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the accepted format names.
var Formats = []Format{FormatText, FormatJSON, FormatYAML}

// ParseFormat accepts "text", "json", "yaml" and "yml". Empty means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown output format %q (expected text, json or yaml)", s)
}

// JSON writes info as an indented JSON object.
func JSON(w io.Writer, info any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}

// YAML writes info as a YAML document.
func YAML(w io.Writer, info any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(info); err != nil {
		return err
	}
	return enc.Close()
}

// Write renders info in the given format.
func Write(w io.Writer, f Format, info *resolve.UpdateInfo, opts Options) error {
	switch f {
	case FormatJSON:
		return JSON(w, info)
	case FormatYAML:
		return YAML(w, info)
	default:
		return Fprint(w, info, opts)
	}
}

// ErrorReport is the machine-readable form of a failed check.
type ErrorReport struct {
	Error      string     `json:"error" yaml:"error"`
	Kind       string     `json:"kind" yaml:"kind"`
	Side       string     `json:"side,omitempty" yaml:"side,omitempty"`
	Source     string     `json:"source,omitempty" yaml:"source,omitempty"`
	RetryAt    *time.Time `json:"retry_at,omitempty" yaml:"retry_at,omitempty"`
	Suggestion string     `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// NewErrorReport summarizes err for JSON or YAML output.
func NewErrorReport(err error) ErrorReport {
	r := ErrorReport{Error: err.Error(), Kind: checkerr.KindOf(err).String()}
	var ce *checkerr.Error
	if errors.As(err, &ce) {
		r.Side = ce.Side.String()
		r.Source = ce.Source
		if !ce.RetryAt.IsZero() {
			t := ce.RetryAt.UTC()
			r.RetryAt = &t
		}
		r.Suggestion = ce.Suggestion()
	}
	return r
}

// WriteError renders a failed check in the given format. Text output is
// ErrorLine plus a newline.
func WriteError(w io.Writer, f Format, err error, opts Options) error {
	switch f {
	case FormatJSON:
		return JSON(w, NewErrorReport(err))
	case FormatYAML:
		return YAML(w, NewErrorReport(err))
	default:
		_, werr := fmt.Fprintln(w, ErrorLine(err, opts))
		return werr
	}
}
