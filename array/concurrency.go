package array

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// runBounded fans n work items out across goroutines, calling fn with
// each item's index, limited to cap concurrent goroutines (unbounded
// when cap <= 0). The batch fails with the first error encountered;
// other in-flight items run to completion and their results are
// discarded.
func runBounded(ctx context.Context, n int, cap int, fn func(ctx context.Context, i int) error) error {
	group, gctx := errgroup.WithContext(ctx)
	if cap > 0 {
		group.SetLimit(cap)
	}
	for i := 0; i < n; i++ {
		i := i
		group.Go(func() error { return fn(gctx, i) })
	}
	return group.Wait()
}
