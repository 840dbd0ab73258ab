// Package resolve decides whether an update is available. It parses the
// caller's version, asks a source provider for the latest release, parses
// that too and compares the two.
package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/tsukumogami/updatecheck/internal/checkerr"
	"github.com/tsukumogami/updatecheck/internal/log"
	"github.com/tsukumogami/updatecheck/internal/semver"
	"github.com/tsukumogami/updatecheck/internal/source"
)

// UpdateInfo is the outcome of a successful check.
// IsUpdateAvailable is true exactly when LatestVersion > CurrentVersion.
type UpdateInfo struct {
	Name              string         `json:"name,omitempty" yaml:"name,omitempty"`
	Source            string         `json:"source,omitempty" yaml:"source,omitempty"`
	IsUpdateAvailable bool           `json:"is_update_available" yaml:"is_update_available"`
	CurrentVersion    semver.Version `json:"current_version" yaml:"current_version"`
	LatestVersion     semver.Version `json:"latest_version" yaml:"latest_version"`
	Changelog         string         `json:"changelog,omitempty" yaml:"changelog,omitempty"`
	URL               string         `json:"url" yaml:"url"`
}

// HasChangelog reports whether release notes came with the latest release.
func (u *UpdateInfo) HasChangelog() bool {
	return (&source.RawRelease{Changelog: u.Changelog}).HasChangelog()
}

// String returns a one-line summary such as "serde 1.0.0 -> 1.0.1".
func (u *UpdateInfo) String() string {
	name := u.Name
	if name == "" {
		name = "latest"
	}
	if u.IsUpdateAvailable {
		return fmt.Sprintf("%s %s -> %s", name, u.CurrentVersion, u.LatestVersion)
	}
	return fmt.Sprintf("%s %s is up to date", name, u.CurrentVersion)
}

// Resolve parses raw.Version and compares it with current. A newer
// release is an update; an equal or older one (a local pre-release ahead
// of anything published, for example) is not.
func Resolve(current semver.Version, raw *source.RawRelease) (*UpdateInfo, error) {
	if raw == nil {
		return nil, &checkerr.Error{
			Kind:    checkerr.KindMalformedResponse,
			Message: "source returned no release",
		}
	}

	latest, err := semver.Parse(raw.Version)
	if err != nil {
		return nil, &checkerr.Error{
			Kind:    checkerr.KindInvalidVersion,
			Side:    checkerr.SideLatest,
			Message: fmt.Sprintf("latest version %q is not a valid semantic version", raw.Version),
			Err:     err,
		}
	}

	return &UpdateInfo{
		IsUpdateAvailable: latest.GreaterThan(current),
		CurrentVersion:    current,
		LatestVersion:     latest,
		Changelog:         raw.Changelog,
		URL:               raw.URL,
	}, nil
}

// Checker runs checks against the sources reachable through a Fetcher.
// A Checker holds no per-check state; one value can serve concurrent checks.
type Checker struct {
	fetcher *source.Fetcher
	logger  log.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithLogger sets the logger used for check outcomes.
func WithLogger(l log.Logger) Option {
	return func(c *Checker) {
		c.logger = l
	}
}

// New creates a Checker.
func New(f *source.Fetcher, opts ...Option) *Checker {
	c := &Checker{fetcher: f}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = log.OrDefault(c.logger)
	return c
}

// Check reports whether name at src has a release newer than current.
//
// The current version and the source parameters are validated before any
// request is made. The first failure is returned as a *checkerr.Error and
// no UpdateInfo is produced.
func (c *Checker) Check(ctx context.Context, src source.Source, name, current string) (*UpdateInfo, error) {
	desc := src.Describe(name)

	cur, err := semver.Parse(current)
	if err != nil {
		return nil, &checkerr.Error{
			Kind:    checkerr.KindInvalidVersion,
			Side:    checkerr.SideCurrent,
			Source:  desc,
			Message: fmt.Sprintf("current version %q is not a valid semantic version", current),
			Err:     err,
		}
	}

	provider, err := c.fetcher.NewProvider(src, name)
	if err != nil {
		return nil, err
	}
	return c.CheckProvider(ctx, provider, name, cur)
}

// CheckProvider runs the fetch and compare steps against an existing
// provider. Check is the usual entry point.
func (c *Checker) CheckProvider(ctx context.Context, p source.Provider, name string, current semver.Version) (*UpdateInfo, error) {
	desc := p.SourceDescription()
	logger := c.logger.With("source", desc)

	raw, err := p.FetchLatest(ctx)
	if err != nil {
		logger.Info("check failed", "kind", checkerr.KindOf(err).String(), "error", err)
		return nil, err
	}

	info, err := Resolve(current, raw)
	if err != nil {
		var ce *checkerr.Error
		if errors.As(err, &ce) && ce.Source == "" {
			ce.Source = desc
		}
		logger.Info("check failed", "kind", checkerr.KindOf(err).String(), "error", err)
		return nil, err
	}

	info.Name = name
	info.Source = desc
	logger.Info("check complete",
		"current", info.CurrentVersion.String(),
		"latest", info.LatestVersion.String(),
		"update_available", info.IsUpdateAvailable)
	return info, nil
}
