package source

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tsukumogami/updatecheck/internal/checkerr"
	"github.com/tsukumogami/updatecheck/internal/log"
	"github.com/tsukumogami/updatecheck/internal/transport"
)

const (
	// DefaultCratesIOURL is the production crates.io registry.
	DefaultCratesIOURL = "https://crates.io"
	// DefaultGitHubAPIURL is the production GitHub REST API root.
	DefaultGitHubAPIURL = "https://api.github.com"
	// DefaultGitHubWebURL is where GitHub tag pages live.
	DefaultGitHubWebURL = "https://github.com"
	// DefaultUserAgent is sent when the caller does not set one. crates.io
	// rejects requests without a User-Agent.
	DefaultUserAgent = "updatecheck (https://github.com/tsukumogami/updatecheck)"
)

// Fetcher holds what every provider needs: the transport, API roots,
// credentials and a logger. It has no per-check state and is safe for
// concurrent use when its Transport is.
type Fetcher struct {
	transport    transport.Transport
	cratesIOURL  string
	githubAPIURL string
	githubWebURL string
	githubToken  string
	giteaToken   string
	userAgent    string
	logger       log.Logger
	now          func() time.Time
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithCratesIORegistry sets a custom crates.io registry URL.
func WithCratesIORegistry(url string) Option {
	return func(f *Fetcher) {
		f.cratesIOURL = strings.TrimRight(url, "/")
	}
}

// WithGitHubAPIURL sets a custom GitHub API root, e.g. for GitHub Enterprise
// ("https://ghe.example.com/api/v3") or a test server.
func WithGitHubAPIURL(url string) Option {
	return func(f *Fetcher) {
		f.githubAPIURL = strings.TrimRight(url, "/")
	}
}

// WithGitHubWebURL sets the web root used to build tag page links.
func WithGitHubWebURL(url string) Option {
	return func(f *Fetcher) {
		f.githubWebURL = strings.TrimRight(url, "/")
	}
}

// WithGitHubToken authenticates GitHub requests.
func WithGitHubToken(token string) Option {
	return func(f *Fetcher) {
		f.githubToken = token
	}
}

// WithGiteaToken authenticates Gitea requests.
func WithGiteaToken(token string) Option {
	return func(f *Fetcher) {
		f.giteaToken = token
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(l log.Logger) Option {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// NewFetcher creates a Fetcher that performs requests through t.
func NewFetcher(t transport.Transport, opts ...Option) *Fetcher {
	f := &Fetcher{
		transport:    t,
		cratesIOURL:  DefaultCratesIOURL,
		githubAPIURL: DefaultGitHubAPIURL,
		githubWebURL: DefaultGitHubWebURL,
		userAgent:    DefaultUserAgent,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = log.OrDefault(f.logger)
	return f
}

// GitHubAuthenticated reports whether a GitHub token is configured.
func (f *Fetcher) GitHubAuthenticated() bool {
	return f.githubToken != ""
}

// get performs one GET request through the transport. A transport failure
// becomes a network error; the response is returned whatever its status.
func (f *Fetcher) get(ctx context.Context, desc, url string, header http.Header) (*transport.Response, error) {
	h := header.Clone()
	if h == nil {
		h = make(http.Header)
	}
	if h.Get("User-Agent") == "" {
		h.Set("User-Agent", f.userAgent)
	}
	if h.Get("Accept") == "" {
		h.Set("Accept", "application/json")
	}

	f.logger.Debug("request", "source", desc, "url", url)
	resp, err := f.transport.Get(ctx, url, h)
	if err != nil {
		f.logger.Debug("request failed", "source", desc, "url", url, "error", err)
		return nil, checkerr.WrapTransport(err, desc, "request failed")
	}
	f.logger.Debug("response", "source", desc, "url", url, "status", resp.StatusCode)
	return resp, nil
}

// statusError maps a non-2xx response onto an error kind. what names the
// thing being looked up ("crate serde", "latest release").
func (f *Fetcher) statusError(resp *transport.Response, desc, what string) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}

	switch {
	case code == http.StatusNotFound:
		return &checkerr.Error{
			Kind:    checkerr.KindNotFound,
			Source:  desc,
			Message: what + " not found",
		}
	case isRateLimited(code, resp.Header):
		return &checkerr.Error{
			Kind:    checkerr.KindRateLimited,
			Source:  desc,
			Message: fmt.Sprintf("rate limited (HTTP %d)", code),
			RetryAt: retryAt(resp.Header, f.now()),
		}
	default:
		return &checkerr.Error{
			Kind:    checkerr.KindNetwork,
			Cause:   checkerr.CauseHTTPStatus,
			Source:  desc,
			Message: fmt.Sprintf("unexpected status %d %s", code, http.StatusText(code)),
		}
	}
}

// isRateLimited treats 429 as throttling, and 403 when the rate limit
// headers say the quota is spent.
func isRateLimited(code int, h http.Header) bool {
	if code == http.StatusTooManyRequests {
		return true
	}
	if code == http.StatusForbidden {
		return h.Get("X-RateLimit-Remaining") == "0" || h.Get("Retry-After") != ""
	}
	return false
}

// retryAt derives the earliest retry time from Retry-After (seconds or an
// HTTP date) or X-RateLimit-Reset (unix seconds). Zero when neither is usable.
func retryAt(h http.Header, now time.Time) time.Time {
	if ra := strings.TrimSpace(h.Get("Retry-After")); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil && secs >= 0 {
			return now.Add(time.Duration(secs) * time.Second)
		}
		if t, err := http.ParseTime(ra); err == nil {
			return t
		}
	}
	if reset := strings.TrimSpace(h.Get("X-RateLimit-Reset")); reset != "" {
		if unix, err := strconv.ParseInt(reset, 10, 64); err == nil && unix > 0 {
			return time.Unix(unix, 0)
		}
	}
	return time.Time{}
}

// decodeJSON decodes a 2xx body into v. A non-JSON Content-Type or a body
// that does not decode is a malformed response.
func decodeJSON(resp *transport.Response, desc string, v any) error {
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || !strings.Contains(mediaType, "json") {
			return &checkerr.Error{
				Kind:    checkerr.KindMalformedResponse,
				Source:  desc,
				Message: fmt.Sprintf("unexpected content type %q", ct),
			}
		}
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return &checkerr.Error{
			Kind:    checkerr.KindMalformedResponse,
			Source:  desc,
			Message: "failed to decode response",
			Err:     err,
		}
	}
	return nil
}

func malformed(desc, message string) error {
	return &checkerr.Error{
		Kind:    checkerr.KindMalformedResponse,
		Source:  desc,
		Message: message,
	}
}

func notFound(desc, message string) error {
	return &checkerr.Error{
		Kind:    checkerr.KindNotFound,
		Source:  desc,
		Message: message,
	}
}

func invalidConfig(desc, message string, err error) error {
	return &checkerr.Error{
		Kind:    checkerr.KindInvalidConfiguration,
		Source:  desc,
		Message: message,
		Err:     err,
	}
}
