// Package parallel splits index ranges across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls fan-out.
type Config struct {
	Enabled      bool // Run chunks concurrently.
	NumWorkers   int  // Upper bound on goroutines per call.
	MinChunkSize int  // Fewest items a goroutine is given.
}

// DefaultConfig uses one worker per CPU.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64,
	}
}

// Sequential returns a Config that never spawns goroutines.
func Sequential() Config {
	return Config{NumWorkers: 1, MinChunkSize: 1}
}

// WithMinChunk returns a copy of c with MinChunkSize replaced.
func (c Config) WithMinChunk(n int) Config {
	c.MinChunkSize = n
	return c
}

// ForRange calls f on disjoint [lo, hi) ranges covering [0, n) and waits for
// all of them. It runs inline when parallelism is disabled or n is smaller
// than two chunks.
func ForRange(n int, cfg Config, f func(lo, hi int)) {
	if n <= 0 {
		return
	}
	minChunk := max(cfg.MinChunkSize, 1)
	workers := max(cfg.NumWorkers, 1)
	if !cfg.Enabled || workers == 1 || n < 2*minChunk {
		f(0, n)
		return
	}

	chunk := max((n+workers-1)/workers, minChunk)

	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			f(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}

// For executes f(i) for every i in [0, n).
func For(n int, cfg Config, f func(i int)) {
	ForRange(n, cfg, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			f(i)
		}
	})
}
