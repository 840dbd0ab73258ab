package batch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/tsukumogami/updatecheck/internal/resolve"
	"github.com/tsukumogami/updatecheck/internal/source"
)

// CheckFunc performs one check. updatecheck.Check has this shape.
type CheckFunc func(ctx context.Context, src source.Source, name, current string) (*resolve.UpdateInfo, error)

// Result is the outcome of checking one target. Exactly one of Info and
// Err is set.
type Result struct {
	Target Target
	Info   *resolve.UpdateInfo
	Err    error
}

// Options controls a batch run.
type Options struct {
	// Concurrency bounds the number of checks in flight. Values below 1 mean 1.
	Concurrency int

	// OnDone, if set, is called as each check finishes. It may be called
	// from several goroutines at once.
	OnDone func(Result)
}

// Run checks every target and returns the results in target order. A
// failing target does not stop the others; its error is kept in its Result.
func Run(ctx context.Context, targets []Target, check CheckFunc, opts Options) []Result {
	limit := opts.Concurrency
	if limit < 1 {
		limit = 1
	}

	results := make([]Result, len(targets))
	var g errgroup.Group
	g.SetLimit(limit)

	for i, t := range targets {
		g.Go(func() error {
			r := Result{Target: t}
			src, name, err := t.Resolve()
			if err != nil {
				r.Err = err
			} else {
				r.Info, r.Err = check(ctx, src, name, t.Current)
			}
			results[i] = r
			if opts.OnDone != nil {
				opts.OnDone(r)
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
