package parallel

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFor(t *testing.T) {
	tests := []struct {
		name string
		n    int
		cfg  Config
	}{
		{"default", 1000, DefaultConfig()},
		{"sequential", 100, Sequential()},
		{"disabled", 100, Config{Enabled: false, NumWorkers: 8, MinChunkSize: 1}},
		{"tiny chunks", 37, Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}},
		{"below two chunks", 10, Config{Enabled: true, NumWorkers: 4, MinChunkSize: 64}},
		{"empty", 0, DefaultConfig()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen := make([]int32, tt.n)
			var counter int64
			For(tt.n, tt.cfg, func(i int) {
				atomic.AddInt32(&seen[i], 1)
				atomic.AddInt64(&counter, 1)
			})

			assert.Equal(t, int64(tt.n), counter)
			for i, c := range seen {
				assert.Equalf(t, int32(1), c, "index %d visited %d times", i, c)
			}
		})
	}
}

func TestForRange_DisjointCover(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 3, MinChunkSize: 2}

	var mu sync.Mutex
	var ranges [][2]int
	ForRange(20, cfg, func(lo, hi int) {
		mu.Lock()
		ranges = append(ranges, [2]int{lo, hi})
		mu.Unlock()
	})

	total := 0
	for _, r := range ranges {
		assert.Less(t, r[0], r[1])
		assert.GreaterOrEqual(t, r[1]-r[0], 2)
		total += r[1] - r[0]
	}
	assert.Equal(t, 20, total)
	assert.Len(t, ranges, 3)
}

func TestConfig_WithMinChunk(t *testing.T) {
	cfg := DefaultConfig().WithMinChunk(1)
	assert.Equal(t, 1, cfg.MinChunkSize)
	assert.Equal(t, DefaultConfig().NumWorkers, cfg.NumWorkers)
}
