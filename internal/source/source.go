// Package source fetches the latest release of an artifact from a registry
// or a Git hosting service.
//
// Each source kind answers the same question with a different API shape.
// A Provider hides that difference and returns a RawRelease whose version
// text has not been parsed yet; parsing and comparison belong to the
// resolve package.
package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/tsukumogami/updatecheck/internal/checkerr"
)

// Kind identifies the service a Source addresses.
type Kind int

const (
	// KindCratesIO is the crates.io package registry.
	KindCratesIO Kind = iota + 1
	// KindGitHub is github.com (or a GitHub Enterprise API root).
	KindGitHub
	// KindGitea is a self-hosted Gitea or Forgejo instance.
	KindGitea
)

func (k Kind) String() string {
	switch k {
	case KindCratesIO:
		return "crates.io"
	case KindGitHub:
		return "GitHub"
	case KindGitea:
		return "Gitea"
	default:
		return "unknown"
	}
}

// ParseKind accepts the names used on the command line and in batch files.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "crates", "crates.io", "crates-io", "cratesio", "cargo":
		return KindCratesIO, nil
	case "github", "gh":
		return KindGitHub, nil
	case "gitea", "forgejo":
		return KindGitea, nil
	}
	return 0, fmt.Errorf("unknown source %q (expected crates, github or gitea)", s)
}

// Source carries addressing information only. It is a value type; build one
// per check with CratesIO, GitHub or Gitea.
type Source struct {
	Kind    Kind
	Owner   string // GitHub and Gitea
	BaseURL string // Gitea only, e.g. "https://codeberg.org"
}

// CratesIO addresses the crates.io registry.
func CratesIO() Source {
	return Source{Kind: KindCratesIO}
}

// GitHub addresses repositories owned by owner on GitHub.
func GitHub(owner string) Source {
	return Source{Kind: KindGitHub, Owner: owner}
}

// Gitea addresses repositories owned by owner on the instance at baseURL.
func Gitea(owner, baseURL string) Source {
	return Source{Kind: KindGitea, Owner: owner, BaseURL: baseURL}
}

// Describe returns the label used in errors and logs for artifact name,
// e.g. "crates.io:serde" or "GitHub:serde-rs/serde".
func (s Source) Describe(name string) string {
	switch s.Kind {
	case KindCratesIO:
		return "crates.io:" + name
	case KindGitHub, KindGitea:
		return s.Kind.String() + ":" + s.Owner + "/" + name
	default:
		return name
	}
}

func (s Source) String() string {
	switch s.Kind {
	case KindGitHub:
		return "GitHub(" + s.Owner + ")"
	case KindGitea:
		return "Gitea(" + s.Owner + " @ " + s.BaseURL + ")"
	default:
		return s.Kind.String()
	}
}

// Validate checks the addressing parameters without touching the network.
func (s Source) Validate(name string) error {
	desc := s.Describe(name)
	invalid := func(format string, args ...any) error {
		return &checkerr.Error{
			Kind:    checkerr.KindInvalidConfiguration,
			Source:  desc,
			Message: fmt.Sprintf(format, args...),
		}
	}

	switch s.Kind {
	case KindCratesIO:
		if !isValidCrateName(name) {
			return invalid("invalid crate name %q", name)
		}
	case KindGitHub, KindGitea:
		if !isValidOwner(s.Owner) {
			return invalid("invalid owner %q", s.Owner)
		}
		if !isValidRepoName(name) {
			return invalid("invalid repository name %q", name)
		}
		if s.Kind == KindGitea {
			if _, err := normalizeBaseURL(s.BaseURL); err != nil {
				return invalid("invalid base URL %q: %v", s.BaseURL, err)
			}
		}
	default:
		return invalid("unknown source kind %d", int(s.Kind))
	}
	return nil
}

// normalizeBaseURL checks that raw is an absolute http(s) URL with a host and
// no query or fragment, and returns it without a trailing slash.
func normalizeBaseURL(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("base URL is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("scheme must be http or https")
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host")
	}
	if u.User != nil {
		return "", fmt.Errorf("credentials in URL are not allowed")
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return "", fmt.Errorf("query and fragment are not allowed")
	}
	return strings.TrimRight(u.String(), "/"), nil
}

// RawRelease is what a source reports before any version parsing.
type RawRelease struct {
	Version   string // Tag or version text as published, e.g. "v1.2.3"
	Changelog string // Release notes; empty when the source has none
	URL       string // Web page with more information
}

// HasChangelog reports whether release notes were provided.
func (r *RawRelease) HasChangelog() bool {
	return strings.TrimSpace(r.Changelog) != ""
}

// Provider fetches the latest release for one artifact at one source.
type Provider interface {
	FetchLatest(ctx context.Context) (*RawRelease, error)

	// SourceDescription identifies the artifact and source, e.g. "crates.io:serde".
	SourceDescription() string
}
