// Package updatecheck reports whether a newer release of a Rust crate or a
// GitHub or Gitea repository has been published.
//
// A check parses the caller's current version, asks the source for its
// latest release and compares the two under semantic-versioning
// precedence. It yields either an *UpdateInfo or an *Error:
//
//	info, err := updatecheck.Check(ctx, updatecheck.CratesIO(), "serde", "1.0.200")
//	if err != nil {
//		return err
//	}
//	if info.IsUpdateAvailable {
//		fmt.Println("upgrade to", info.LatestVersion)
//	}
//
// The package reads no environment variables and no files. Tokens and API
// roots are passed explicitly as options.
package updatecheck

import (
	"context"
	"fmt"
	"io"

	"github.com/tsukumogami/updatecheck/internal/checkerr"
	"github.com/tsukumogami/updatecheck/internal/log"
	"github.com/tsukumogami/updatecheck/internal/render"
	"github.com/tsukumogami/updatecheck/internal/resolve"
	"github.com/tsukumogami/updatecheck/internal/semver"
	"github.com/tsukumogami/updatecheck/internal/source"
	"github.com/tsukumogami/updatecheck/internal/transport"
)

// UpdateInfo is the outcome of a successful check.
type UpdateInfo = resolve.UpdateInfo

// Source identifies where the latest release is looked up.
type Source = source.Source

// Version is a parsed semantic version.
type Version = semver.Version

// Error is the structured failure of a check.
type Error = checkerr.Error

// ErrorKind classifies an Error.
type ErrorKind = checkerr.Kind

// RenderOptions controls text output.
type RenderOptions = render.Options

// Transport performs the HTTP GET requests of a check.
type Transport = transport.Transport

// Logger receives diagnostic output.
type Logger = log.Logger

// Error kinds.
const (
	KindInvalidVersion       = checkerr.KindInvalidVersion
	KindInvalidConfiguration = checkerr.KindInvalidConfiguration
	KindNotFound             = checkerr.KindNotFound
	KindNetwork              = checkerr.KindNetwork
	KindRateLimited          = checkerr.KindRateLimited
	KindMalformedResponse    = checkerr.KindMalformedResponse
)

// CratesIO selects the crates.io registry.
func CratesIO() Source { return source.CratesIO() }

// GitHub selects the releases of a GitHub repository owned by owner.
func GitHub(owner string) Source { return source.GitHub(owner) }

// Gitea selects the releases of a repository on the Gitea or Forgejo
// instance at baseURL, e.g. "https://codeberg.org".
func Gitea(owner, baseURL string) Source { return source.Gitea(owner, baseURL) }

// ParseVersion parses a semantic version; a leading "v" is accepted.
func ParseVersion(s string) (Version, error) { return semver.Parse(s) }

// KindOf returns the kind of the *Error in err's chain.
func KindOf(err error) ErrorKind { return checkerr.KindOf(err) }

type options struct {
	transport transport.Transport
	fetcher   []source.Option
	logger    log.Logger
	render    render.Options
}

// Option configures a check.
type Option func(*options)

// WithTransport replaces the default HTTP transport, for example with one
// shared by many concurrent checks.
func WithTransport(t Transport) Option {
	return func(o *options) {
		o.transport = t
	}
}

// WithGitHubToken authenticates GitHub requests, raising the rate limit.
func WithGitHubToken(token string) Option {
	return func(o *options) {
		o.fetcher = append(o.fetcher, source.WithGitHubToken(token))
	}
}

// WithGiteaToken authenticates Gitea requests.
func WithGiteaToken(token string) Option {
	return func(o *options) {
		o.fetcher = append(o.fetcher, source.WithGiteaToken(token))
	}
}

// WithGitHubAPIURL points GitHub checks at another API root, such as a
// GitHub Enterprise server.
func WithGitHubAPIURL(url string) Option {
	return func(o *options) {
		o.fetcher = append(o.fetcher, source.WithGitHubAPIURL(url))
	}
}

// WithCratesIORegistry points crates.io checks at a mirror.
func WithCratesIORegistry(url string) Option {
	return func(o *options) {
		o.fetcher = append(o.fetcher, source.WithCratesIORegistry(url))
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.fetcher = append(o.fetcher, source.WithUserAgent(ua))
	}
}

// WithLogger sets the logger for request and outcome diagnostics.
func WithLogger(l Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithRenderOptions controls the text written by CheckAndPrint and Print.
func WithRenderOptions(r RenderOptions) Option {
	return func(o *options) {
		o.render = r
	}
}

func newOptions(opts []Option) *options {
	o := &options{render: render.DefaultOptions()}
	for _, opt := range opts {
		opt(o)
	}
	if o.transport == nil {
		o.transport = transport.NewHTTP()
	}
	o.logger = log.OrDefault(o.logger)
	return o
}

func (o *options) checker() *resolve.Checker {
	fopts := append([]source.Option{source.WithLogger(o.logger)}, o.fetcher...)
	return resolve.New(source.NewFetcher(o.transport, fopts...), resolve.WithLogger(o.logger))
}

// Check reports whether name at src has a release newer than current.
//
// name is a crate name for crates.io and a repository name for GitHub and
// Gitea. Exactly one of the results is non-nil; a failure is an *Error.
func Check(ctx context.Context, src Source, name, current string, opts ...Option) (*UpdateInfo, error) {
	return newOptions(opts).checker().Check(ctx, src, name, current)
}

// CheckAndPrint runs Check and writes the result to w: the update block,
// the up-to-date line, or a one-line error. The error is still returned.
func CheckAndPrint(ctx context.Context, w io.Writer, src Source, name, current string, opts ...Option) (*UpdateInfo, error) {
	o := newOptions(opts)
	info, err := o.checker().Check(ctx, src, name, current)
	if err != nil {
		if _, werr := fmt.Fprintln(w, render.ErrorLine(err, o.render)); werr != nil {
			o.logger.Warn("failed to write error", "error", werr)
		}
		return nil, err
	}
	return info, render.Fprint(w, info, o.render)
}

// Print writes the update block for info to w when an update is
// available, and nothing otherwise.
func Print(w io.Writer, info *UpdateInfo, opts ...Option) error {
	if info == nil || !info.IsUpdateAvailable {
		return nil
	}
	o := &options{render: render.DefaultOptions()}
	for _, opt := range opts {
		opt(o)
	}
	return render.Fprint(w, info, o.render)
}
