package metrics

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantileSketch_Window(t *testing.T) {
	sk := newQuantileSketch(Basic.objectives())

	count, sum, q := sk.snapshot()
	assert.Equal(t, uint64(0), count)
	assert.Equal(t, 0.0, sum)
	assert.True(t, math.IsNaN(q[0.5]))

	for i := 0; i < 4; i++ {
		sk.observe(8)
	}
	count, sum, q = sk.snapshot()
	assert.Equal(t, uint64(4), count)
	assert.Equal(t, 32.0, sum)
	assert.InDelta(t, 8.0, q[0.5], 0.001)

	sk.rotate()
	count, sum, q = sk.snapshot()
	assert.Equal(t, uint64(4), count, "count is cumulative across rotation")
	assert.Equal(t, 32.0, sum, "sum is cumulative across rotation")
	assert.True(t, math.IsNaN(q[0.5]), "quantiles reflect only the current window")
}

func TestQuantileSketch_ConcurrentObserve(t *testing.T) {
	sk := newQuantileSketch(Advanced.objectives())

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				sk.observe(float64(i % 100))
			}
		}()
	}
	// rotate concurrently with writers
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			sk.rotate()
		}
	}()
	wg.Wait()

	count, _, _ := sk.snapshot()
	assert.Equal(t, uint64(8000), count)
}

func TestWindowedSummaryVec_LazyChildren(t *testing.T) {
	vec := newWindowedSummaryVec("latency_by_shard", Basic)

	vec.Observe("a", 1)
	vec.Observe("a", 3)
	vec.Observe("b", 10)

	vec.mu.RLock()
	require.Len(t, vec.children, 2)
	vec.mu.RUnlock()

	count, sum, _ := vec.children["a"].snapshot()
	assert.Equal(t, uint64(2), count)
	assert.Equal(t, 4.0, sum)

	vec.Rotate()
	_, _, q := vec.children["b"].snapshot()
	assert.True(t, math.IsNaN(q[0.5]))
}

func TestDetailLevelObjectives(t *testing.T) {
	assert.Equal(t, map[float64]float64{0.5: 0.05}, Basic.objectives())
	assert.Len(t, Advanced.objectives(), 3)
	assert.Equal(t, "basic", Basic.String())
	assert.Equal(t, "advanced", Advanced.String())
}
