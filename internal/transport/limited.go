package transport

import (
	"context"
	"net/http"

	"golang.org/x/sync/semaphore"
)

// Limited wraps a Transport so that at most n requests run at the same time.
// Callers that check many artifacts concurrently share one Limited value.
type Limited struct {
	next Transport
	sem  *semaphore.Weighted
}

// NewLimited returns a Transport allowing n concurrent requests through next.
// n < 1 is treated as 1.
func NewLimited(next Transport, n int) *Limited {
	if n < 1 {
		n = 1
	}
	return &Limited{next: next, sem: semaphore.NewWeighted(int64(n))}
}

// Get waits for a free slot, honouring ctx, then delegates.
func (l *Limited) Get(ctx context.Context, url string, header http.Header) (*Response, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	defer l.sem.Release(1)
	return l.next.Get(ctx, url, header)
}
