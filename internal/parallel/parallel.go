package parallel

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultLimit is used when limit < 1.
const DefaultLimit = 4

// Map applies fn to every item with at most limit calls in flight.
// Results keep the input order. The first error cancels the remaining
// calls and is returned.
func Map[T, R any](ctx context.Context, items []T, limit int, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	if limit < 1 {
		limit = DefaultLimit
	}

	results := make([]R, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := fn(ctx, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
