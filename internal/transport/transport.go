// Package transport performs the network round trip for source clients.
//
// The Transport interface is the only thing the rest of the module needs from
// the network. HTTP is the synchronous implementation backed by the hardened
// client from internal/httputil; Limited bounds how many requests may be in
// flight when a caller fans out many checks at once.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tsukumogami/updatecheck/internal/httputil"
)

// DefaultMaxBodySize limits response bodies to prevent memory exhaustion (10MB).
const DefaultMaxBodySize = 10 * 1024 * 1024

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport issues a GET request and returns the response, whatever its status.
// Implementations must be safe for concurrent use.
type Transport interface {
	Get(ctx context.Context, url string, header http.Header) (*Response, error)
}

// Func adapts a plain function to the Transport interface.
type Func func(ctx context.Context, url string, header http.Header) (*Response, error)

// Get calls f.
func (f Func) Get(ctx context.Context, url string, header http.Header) (*Response, error) {
	return f(ctx, url, header)
}

// Error reports a request that did not produce an HTTP response.
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTP is the synchronous net/http Transport.
type HTTP struct {
	client      *http.Client
	maxBodySize int64
}

// HTTPOption configures an HTTP transport.
type HTTPOption func(*HTTP)

// WithClient replaces the underlying http.Client (e.g. for tests).
func WithClient(c *http.Client) HTTPOption {
	return func(t *HTTP) {
		t.client = c
	}
}

// WithTimeout sets the overall request timeout of the default client.
func WithTimeout(d time.Duration) HTTPOption {
	return func(t *HTTP) {
		t.client = httputil.NewSecureClient(httputil.ClientOptions{
			Timeout:      d,
			DialTimeout:  10 * time.Second,
			MaxRedirects: 5,
		})
	}
}

// WithMaxBodySize caps the number of body bytes read from a response.
func WithMaxBodySize(n int64) HTTPOption {
	return func(t *HTTP) {
		t.maxBodySize = n
	}
}

// NewHTTP creates an HTTP transport using the hardened client defaults.
func NewHTTP(opts ...HTTPOption) *HTTP {
	t := &HTTP{
		client: httputil.NewSecureClient(httputil.ClientOptions{
			DialTimeout:  10 * time.Second,
			MaxRedirects: 5,
		}),
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Get implements Transport.
func (t *HTTP) Get(ctx context.Context, url string, header http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBodySize+1))
	if err != nil {
		return nil, &Error{URL: url, Err: fmt.Errorf("reading body: %w", err)}
	}
	if int64(len(body)) > t.maxBodySize {
		return nil, &Error{URL: url, Err: fmt.Errorf("response body exceeds %d bytes", t.maxBodySize)}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
