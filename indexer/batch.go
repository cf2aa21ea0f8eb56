package indexer

import "golang.org/x/sync/errgroup"

// forEachBatch calls fn for consecutive [lo, hi) ranges of size batch covering n rows.
// With workers > 1 the ranges run concurrently on at most that many goroutines; fn
// must only write to its own range.
func forEachBatch(n, batch, workers int, fn func(lo, hi int) error) error {
	if workers <= 1 {
		for lo := 0; lo < n; lo += batch {
			if err := fn(lo, min(lo+batch, n)); err != nil {
				return err
			}
		}
		return nil
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += batch {
		hi := min(lo+batch, n)
		g.Go(func() error { return fn(lo, hi) })
	}
	return g.Wait()
}
