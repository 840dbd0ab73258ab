// Package testutil provides test doubles shared across packages.
package testutil

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/tsukumogami/updatecheck/internal/transport"
)

// Call records one request seen by a FakeTransport.
type Call struct {
	URL    string
	Header http.Header
}

// Reply is a canned answer. Err, when set, is returned instead of a response.
type Reply struct {
	Status int
	Header http.Header
	Body   string
	Err    error
}

// JSON builds a 200 reply with a JSON content type.
func JSON(body string) Reply {
	return Reply{
		Status: http.StatusOK,
		Header: http.Header{"Content-Type": {"application/json; charset=utf-8"}},
		Body:   body,
	}
}

// Status builds a reply with the given status code and an empty JSON body.
func Status(code int) Reply {
	return Reply{
		Status: code,
		Header: http.Header{"Content-Type": {"application/json"}},
		Body:   `{"message":"` + http.StatusText(code) + `"}`,
	}
}

// FakeTransport answers requests from a URL-keyed table and records every
// call. Unknown URLs get a 404 so a test never reaches the network.
type FakeTransport struct {
	mu      sync.Mutex
	replies map[string]Reply
	calls   []Call
}

// NewFakeTransport returns an empty FakeTransport.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{replies: make(map[string]Reply)}
}

// On registers the reply for url and returns the receiver for chaining.
func (f *FakeTransport) On(url string, r Reply) *FakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[url] = r
	return f
}

// Get implements transport.Transport.
func (f *FakeTransport) Get(ctx context.Context, url string, header http.Header) (*transport.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{URL: url, Header: header.Clone()})
	r, ok := f.replies[url]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, &transport.Error{URL: url, Err: err}
	}
	if !ok {
		r = Status(http.StatusNotFound)
	}
	if r.Err != nil {
		return nil, &transport.Error{URL: url, Err: r.Err}
	}
	return &transport.Response{
		StatusCode: r.Status,
		Header:     r.Header.Clone(),
		Body:       []byte(r.Body),
	}, nil
}

// Calls returns a copy of the recorded calls in order.
func (f *FakeTransport) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many requests were made.
func (f *FakeTransport) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// URLs returns the requested URLs in order.
func (f *FakeTransport) URLs() []string {
	calls := f.Calls()
	urls := make([]string, len(calls))
	for i, c := range calls {
		urls[i] = c.URL
	}
	return urls
}

// String summarizes the recorded calls for failure messages.
func (f *FakeTransport) String() string {
	return fmt.Sprintf("FakeTransport%v", f.URLs())
}
