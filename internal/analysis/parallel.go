package analysis

import (
	"runtime"
	"sync"
)

const minChunk = 4

// parallelFor executes fn over [0, n) in contiguous chunks across up to
// maxWorkers goroutines. Small workloads run inline.
func parallelFor(n, maxWorkers int, fn func(start, end int)) {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}
	if n <= minChunk || maxWorkers <= 1 {
		fn(0, n)
		return
	}

	workers := maxWorkers
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
