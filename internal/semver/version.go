// Package semver provides the version model used to decide whether a release
// supersedes another. It wraps Masterminds/semver with strict parsing and a
// tolerance for a single leading "v" as commonly found in Git tag names.
package semver

import (
	"errors"
	"fmt"
	"strings"

	mmsemver "github.com/Masterminds/semver/v3"
)

// ErrInvalid is matched by every parse failure returned from Parse.
var ErrInvalid = errors.New("invalid semantic version")

// ParseError describes why a version string was rejected.
type ParseError struct {
	Text string // Input as given by the caller
	Err  error  // Underlying parser error
}

func (e *ParseError) Error() string {
	if e.Text == "" {
		return "invalid semantic version: empty string"
	}
	return fmt.Sprintf("invalid semantic version %q: %v", e.Text, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrInvalid, e.Err}
}

// Version is an immutable semantic version. The zero value is 0.0.0.
type Version struct {
	v *mmsemver.Version
}

// Parse parses MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD]. At most one leading
// "v" or "V" is stripped first; partial versions such as "1.2" are rejected.
func Parse(text string) (Version, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Version{}, &ParseError{Text: text, Err: errors.New("empty string")}
	}

	trimmed = stripPrefix(trimmed)

	v, err := mmsemver.StrictNewVersion(trimmed)
	if err != nil {
		return Version{}, &ParseError{Text: text, Err: err}
	}
	return Version{v: v}, nil
}

// MustParse is like Parse but panics on invalid input. Intended for tests
// and package-level constants.
func MustParse(text string) Version {
	v, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return v
}

// stripPrefix removes a single leading "v"/"V" when it is followed by a digit,
// so "vv1.0.0" and "version" stay invalid.
func stripPrefix(s string) string {
	if len(s) > 1 && (s[0] == 'v' || s[0] == 'V') && s[1] >= '0' && s[1] <= '9' {
		return s[1:]
	}
	return s
}

func (v Version) inner() *mmsemver.Version {
	if v.v == nil {
		return zero
	}
	return v.v
}

var zero = mmsemver.New(0, 0, 0, "", "")

// Major returns the major component.
func (v Version) Major() uint64 { return v.inner().Major() }

// Minor returns the minor component.
func (v Version) Minor() uint64 { return v.inner().Minor() }

// Patch returns the patch component.
func (v Version) Patch() uint64 { return v.inner().Patch() }

// Prerelease returns the dot-separated pre-release identifiers, or "".
func (v Version) Prerelease() string { return v.inner().Prerelease() }

// Metadata returns the build metadata, or "". It never affects ordering.
func (v Version) Metadata() string { return v.inner().Metadata() }

// IsPrerelease reports whether v carries pre-release identifiers.
func (v Version) IsPrerelease() bool { return v.Prerelease() != "" }

// String returns the canonical form without any "v" prefix.
func (v Version) String() string { return v.inner().String() }

// Compare returns -1, 0 or 1 following semver 2.0.0 precedence.
func (v Version) Compare(o Version) int { return Compare(v, o) }

// Equal reports equal precedence. Build metadata is ignored.
func (v Version) Equal(o Version) bool { return Compare(v, o) == 0 }

// LessThan reports whether v has lower precedence than o.
func (v Version) LessThan(o Version) bool { return Compare(v, o) < 0 }

// GreaterThan reports whether v has higher precedence than o.
func (v Version) GreaterThan(o Version) bool { return Compare(v, o) > 0 }

// Compare orders a and b: major, minor and patch numerically, then a release
// above any of its pre-releases, then pre-release identifiers pairwise.
func Compare(a, b Version) int {
	return a.inner().Compare(b.inner())
}

// MarshalText encodes the canonical form, used by both JSON and YAML output.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText parses text with the same rules as Parse.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalYAML keeps YAML output a plain scalar.
func (v Version) MarshalYAML() (interface{}, error) {
	return v.String(), nil
}
