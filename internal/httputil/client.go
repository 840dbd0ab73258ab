// Package httputil builds the hardened net/http client used by the HTTP transport.
package httputil

import (
	"fmt"
	"net"
	"net/http"
	"time"
)

// ClientOptions configures the secure HTTP client. Zero values select defaults.
type ClientOptions struct {
	// Timeout is the overall request timeout. Default: 30s.
	Timeout time.Duration

	// DialTimeout is the TCP dial timeout. Default: 30s.
	DialTimeout time.Duration

	// TLSHandshakeTimeout is the TLS handshake timeout. Default: 10s.
	TLSHandshakeTimeout time.Duration

	// ResponseHeaderTimeout is the time to wait for response headers. Default: 10s.
	ResponseHeaderTimeout time.Duration

	// MaxRedirects is the maximum redirect depth. Default: 10.
	MaxRedirects int

	// EnableCompression sends Accept-Encoding. Default: false, which keeps
	// decompression bombs off the table.
	EnableCompression bool

	// AllowPrivateRedirects permits redirects to private and loopback
	// addresses. Self-hosted forges on a LAN need this; public APIs never do.
	AllowPrivateRedirects bool

	// UserAgent is set on requests that do not carry one already.
	UserAgent string

	// MaxIdleConns is the maximum number of idle connections. Default: 10.
	MaxIdleConns int

	// IdleConnTimeout is how long idle connections stay open. Default: 90s.
	IdleConnTimeout time.Duration
}

// DefaultOptions returns the default client options.
func DefaultOptions() ClientOptions {
	return ClientOptions{
		Timeout:               30 * time.Second,
		DialTimeout:           30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		MaxRedirects:          10,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}
}

// NewSecureClient creates an HTTP client with redirect validation:
//   - redirects must stay on HTTPS
//   - redirect targets may not resolve to private, loopback, link-local,
//     multicast or unspecified addresses (unless AllowPrivateRedirects)
//   - the redirect chain is bounded by MaxRedirects
func NewSecureClient(opts ClientOptions) *http.Client {
	def := DefaultOptions()
	if opts.Timeout == 0 {
		opts.Timeout = def.Timeout
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = def.DialTimeout
	}
	if opts.TLSHandshakeTimeout == 0 {
		opts.TLSHandshakeTimeout = def.TLSHandshakeTimeout
	}
	if opts.ResponseHeaderTimeout == 0 {
		opts.ResponseHeaderTimeout = def.ResponseHeaderTimeout
	}
	if opts.MaxRedirects == 0 {
		opts.MaxRedirects = def.MaxRedirects
	}
	if opts.MaxIdleConns == 0 {
		opts.MaxIdleConns = def.MaxIdleConns
	}
	if opts.IdleConnTimeout == 0 {
		opts.IdleConnTimeout = def.IdleConnTimeout
	}

	var rt http.RoundTripper = &http.Transport{
		Proxy:              http.ProxyFromEnvironment,
		DisableCompression: !opts.EnableCompression,
		DialContext: (&net.Dialer{
			Timeout:   opts.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   opts.TLSHandshakeTimeout,
		ResponseHeaderTimeout: opts.ResponseHeaderTimeout,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          opts.MaxIdleConns,
		IdleConnTimeout:       opts.IdleConnTimeout,
	}
	if opts.UserAgent != "" {
		rt = &userAgentTransport{base: rt, userAgent: opts.UserAgent}
	}

	return &http.Client{
		Timeout:       opts.Timeout,
		Transport:     rt,
		CheckRedirect: makeRedirectChecker(opts.MaxRedirects, opts.AllowPrivateRedirects),
	}
}

// userAgentTransport fills in a default User-Agent header.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(clone)
}

// makeRedirectChecker creates a redirect validation function.
func makeRedirectChecker(maxRedirects int, allowPrivate bool) func(req *http.Request, via []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if req.URL.Scheme != "https" {
			return fmt.Errorf("redirect to non-HTTPS URL is not allowed: %s", req.URL)
		}

		if len(via) >= maxRedirects {
			return fmt.Errorf("too many redirects")
		}

		if allowPrivate {
			return nil
		}

		host := req.URL.Hostname()
		if ip := net.ParseIP(host); ip != nil {
			return ValidateIP(ip, host)
		}

		// Check every address the name resolves to (DNS rebinding).
		ips, err := net.LookupIP(host)
		if err != nil {
			return fmt.Errorf("failed to resolve redirect host %s: %w", host, err)
		}
		for _, ip := range ips {
			if err := ValidateIP(ip, host); err != nil {
				return fmt.Errorf("refusing redirect: %s resolves to blocked IP %s", host, ip)
			}
		}
		return nil
	}
}
