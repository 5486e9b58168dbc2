package ids

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateMonotonicAndUnique(t *testing.T) {
	prev := Generate()
	for i := 0; i < 1000; i++ {
		id := Generate()
		assert.Greater(t, id, prev)
		prev = id
	}
}

func TestGenerateConcurrentUnique(t *testing.T) {
	const (
		workers = 8
		perW    = 500
	)
	var (
		mu   sync.Mutex
		seen = make(map[int64]struct{}, workers*perW)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]int64, 0, perW)
			for i := 0; i < perW; i++ {
				local = append(local, Generate())
			}
			mu.Lock()
			for _, id := range local {
				seen[id] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers*perW)
}

func TestSetNodeIDOutOfRangeFallsBack(t *testing.T) {
	SetNodeID(5000)
	id := Generate()
	assert.Equal(t, int64(1), (id>>12)&0x3FF)
	SetNodeID(1)
}
