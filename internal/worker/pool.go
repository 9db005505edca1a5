package worker

import (
	"context"
	"runtime"
	"sync"
)

// Pool shards a batch into contiguous ranges, one goroutine per range.
type Pool struct {
	workers int
}

// NewPool builds a pool; workers <= 0 means one per available CPU.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{workers: workers}
}

// Workers returns the configured parallelism.
func (p *Pool) Workers() int {
	return p.workers
}

type shard struct {
	lo, hi int
}

func (p *Pool) shards(n int) []shard {
	if n == 0 {
		return nil
	}
	workers := min(p.workers, n)
	size := (n + workers - 1) / workers
	out := make([]shard, 0, workers)
	for lo := 0; lo < n; lo += size {
		out = append(out, shard{lo: lo, hi: min(lo+size, n)})
	}
	return out
}

// Collect applies fn to every item. Results keep the input order. Side
// records returned by fn are buffered per worker and concatenated in shard
// order, so records of one item stay together and in order.
func Collect[T, R, E any](ctx context.Context, p *Pool, items []T, fn func(T) (R, []E)) ([]R, []E, error) {
	results := make([]R, len(items))
	shards := p.shards(len(items))
	buffers := make([][]E, len(shards))
	errs := make([]error, len(shards))

	var wg sync.WaitGroup
	for i, sh := range shards {
		wg.Add(1)
		go func(i int, sh shard) {
			defer wg.Done()
			for j := sh.lo; j < sh.hi; j++ {
				if err := ctx.Err(); err != nil {
					errs[i] = err
					return
				}
				r, extra := fn(items[j])
				results[j] = r
				buffers[i] = append(buffers[i], extra...)
			}
		}(i, sh)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, nil, err
		}
	}

	total := 0
	for _, b := range buffers {
		total += len(b)
	}
	merged := make([]E, 0, total)
	for _, b := range buffers {
		merged = append(merged, b...)
	}
	return results, merged, nil
}

// Map applies fn to every item, keeping the input order.
func Map[T, R any](ctx context.Context, p *Pool, items []T, fn func(T) R) ([]R, error) {
	results, _, err := Collect(ctx, p, items, func(item T) (R, []struct{}) {
		return fn(item), nil
	})
	return results, err
}
