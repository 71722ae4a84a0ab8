// Package parallel provides data-parallel loop helpers for mask computation.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 16, // A row of blocks is already a fair amount of work.
	}
}

// Sequential returns a config that runs every loop on the calling goroutine.
func Sequential() Config {
	return Config{Enabled: false}
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
// f must only write to state owned by index i.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || cfg.NumWorkers < 2 || n < cfg.MinChunkSize {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// ForTiles splits a rows x cols grid into size x size tiles (the last row and
// column of tiles may hang over the edge) and calls f with each tile's origin.
func ForTiles(rows, cols, size int, f func(row, col int), cfg Config) {
	tileRows := (rows + size - 1) / size
	tileCols := (cols + size - 1) / size
	For(tileRows*tileCols, func(k int) {
		f((k/tileCols)*size, (k%tileCols)*size)
	}, cfg)
}
