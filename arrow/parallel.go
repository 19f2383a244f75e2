package arrow

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/zoobzio/lineage/result"
)

// Parallel runs f and g concurrently on the same input and pairs their
// outputs. The first fault cancels the shared context and is returned.
//
// Parallel gives no ordering guarantee between the two sides. When the
// outputs carry independent histories, merging them is the caller's job.
func Parallel[A, B, C any](f Step[A, B], g Step[A, C]) Step[A, result.Pair[B, C]] {
	return func(ctx context.Context, in A) (result.Pair[B, C], error) {
		var out result.Pair[B, C]
		eg, egCtx := errgroup.WithContext(ctx)
		eg.Go(func() error {
			b, err := f(egCtx, in)
			out.First = b
			return err
		})
		eg.Go(func() error {
			c, err := g(egCtx, in)
			out.Second = c
			return err
		})
		if err := eg.Wait(); err != nil {
			return result.Pair[B, C]{}, err
		}
		return out, nil
	}
}
