// Package pool runs a bounded number of tasks concurrently and
// collects their results in request order, the same fan-out/fan-in
// shape the repository index and download cache both need (§4.2,
// §4.3): never more than Size tasks in flight, but callers see
// results lined up against the requests that produced them.
package pool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Size is the maximum number of tasks run concurrently by Run. Kept
// small and constant: repository listings and downloads both talk to
// the same handful of upstream hosts, and a handful of hosts rarely
// reward more than two concurrent connections.
const Size = 2

// Result pairs a task's input with what it produced, so callers that
// need to report per-item failures without aborting the whole batch
// can do so (Run itself reports only the first error; use RunAll
// when partial failures are acceptable).
type Result[T, R any] struct {
	Item  T
	Value R
	Err   error
}

// Run executes fn for each item with at most Size concurrent calls.
// When a call fails, ctx is cancelled for the calls still running or
// not yet started, and Run returns the first error once every call has
// returned; the returned slice is in request order and only valid when
// err is nil.
func Run[T, R any](ctx context.Context, items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(Size)

	results := make([]R, len(items))
	for i, item := range items {
		i, item := i, item
		eg.Go(func() error {
			r, err := fn(ctx, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RunAll is Run's tolerant sibling: every item runs to completion
// regardless of other items' failures, and the per-item error is
// reported in its Result rather than aborting the batch. Used for
// repository listings, where one repository that cannot be listed
// should not sink the others.
func RunAll[T, R any](ctx context.Context, items []T, fn func(context.Context, T) (R, error)) []Result[T, R] {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(Size)

	results := make([]Result[T, R], len(items))
	for i, item := range items {
		i, item := i, item
		results[i].Item = item
		eg.Go(func() error {
			r, err := fn(ctx, item)
			results[i].Value = r
			results[i].Err = err
			return nil
		})
	}
	_ = eg.Wait() // fn never returns an error that should abort the group
	return results
}
