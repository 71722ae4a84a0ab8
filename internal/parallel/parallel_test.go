package parallel

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.NumWorkers = 4

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	assert.Equal(t, int64(n), counter)
}

func TestFor_Sequential(t *testing.T) {
	var order []int
	For(5, func(i int) {
		order = append(order, i)
	}, Sequential())

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestFor_SmallChunk(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := cfg.MinChunkSize - 1

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	assert.Equal(t, int64(n), counter)
}

func TestForTiles(t *testing.T) {
	var mu sync.Mutex
	origins := map[[2]int]bool{}

	ForTiles(6, 9, 4, func(r, c int) {
		mu.Lock()
		defer mu.Unlock()
		origins[[2]int{r, c}] = true
	}, DefaultConfig())

	want := map[[2]int]bool{
		{0, 0}: true, {0, 4}: true, {0, 8}: true,
		{4, 0}: true, {4, 4}: true, {4, 8}: true,
	}
	assert.Equal(t, want, origins)
}
