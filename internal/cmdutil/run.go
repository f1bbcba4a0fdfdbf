package cmdutil

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunAll calls fn for every item with at most limit calls in flight
// (limit <= 0 means unbounded). The first error cancels the context seen by
// the remaining calls and is the one returned.
func RunAll[T any](ctx context.Context, limit int, items []T, fn func(context.Context, T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, it := range items {
		it := it
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, it)
		})
	}
	return g.Wait()
}
