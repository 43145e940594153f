package ddo

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholdCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Threshold
		want int
	}{
		{"lower value", Threshold{1, true}, Threshold{2, false}, -1},
		{"higher value", Threshold{3, false}, Threshold{2, true}, 1},
		{"unexplored before explored", Threshold{2, false}, Threshold{2, true}, -1},
		{"explored after unexplored", Threshold{2, true}, Threshold{2, false}, 1},
		{"equal", Threshold{2, true}, Threshold{2, true}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Compare(tt.b))
		})
	}
}

func TestSimpleCacheMustExplore(t *testing.T) {
	tests := []struct {
		name   string
		stored *Threshold
		value  float64
		want   bool
	}{
		{"nothing stored", nil, 5, true},
		{"strictly better", &Threshold{4, true}, 5, true},
		{"strictly worse", &Threshold{6, false}, 5, false},
		{"tie with explored", &Threshold{5, true}, 5, false},
		{"tie with unexplored", &Threshold{5, false}, 5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewSimpleCache[string](3)
			if tt.stored != nil {
				c.UpdateThreshold("s", 2, *tt.stored)
			}
			assert.Equal(t, tt.want, c.MustExplore("s", 2, tt.value))
			assert.True(t, c.MustExplore("s", 1, tt.value), "other depths are independent")
			assert.True(t, c.MustExplore("other", 2, tt.value), "other states are independent")
		})
	}
}

func TestSimpleCacheUpdateIsMonotonic(t *testing.T) {
	c := NewSimpleCache[int](2)
	c.UpdateThreshold(1, 1, Threshold{Value: 10, Explored: false})
	c.UpdateThreshold(1, 1, Threshold{Value: 8, Explored: true})
	got, ok := c.Threshold(1, 1)
	require.True(t, ok)
	assert.Equal(t, Threshold{Value: 10, Explored: false}, got)

	c.UpdateThreshold(1, 1, Threshold{Value: 10, Explored: true})
	got, _ = c.Threshold(1, 1)
	assert.Equal(t, Threshold{Value: 10, Explored: true}, got)

	c.UpdateThreshold(1, 1, Threshold{Value: 10, Explored: false})
	got, _ = c.Threshold(1, 1)
	assert.Equal(t, Threshold{Value: 10, Explored: true}, got, "explored flag never regresses")
}

func TestSimpleCacheClear(t *testing.T) {
	c := NewSimpleCache[int](3)
	for d := 0; d <= 3; d++ {
		c.UpdateThreshold(7, d, Threshold{Value: 1, Explored: true})
	}
	c.ClearLayer(3)
	assert.Equal(t, 0, c.Len(3))
	assert.Equal(t, 1, c.Len(2))

	c.Clear(2)
	assert.Equal(t, 0, c.Len(0))
	assert.Equal(t, 0, c.Len(1))
	assert.Equal(t, 1, c.Len(2))

	// out of range depths are ignored
	c.UpdateThreshold(7, 42, Threshold{Value: 1})
	assert.True(t, c.MustExplore(7, 42, -100))
	c.ClearLayer(-1)
}

func TestSimpleCacheConcurrentUpdates(t *testing.T) {
	c := NewSimpleCache[int](1)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				v := float64((i*7 + w*13) % 1000)
				c.UpdateThreshold(0, 1, Threshold{Value: v, Explored: i%2 == 0})
				_ = c.MustExplore(0, 1, v)
			}
		}(w)
	}
	wg.Wait()

	got, ok := c.Threshold(0, 1)
	require.True(t, ok)
	assert.Equal(t, 999.0, got.Value)
}

func TestSimpleCacheInitialize(t *testing.T) {
	c := NewSimpleCache[int](2)
	c.UpdateThreshold(4, 1, Threshold{Value: 3, Explored: true})
	assert.False(t, c.MustExplore(4, 1, 2))

	c.Initialize(5)
	_, ok := c.Threshold(4, 1)
	assert.False(t, ok, "thresholds are dropped")
	c.UpdateThreshold(4, 5, Threshold{Value: 3})
	assert.Equal(t, 1, c.Len(5), "layers follow the new size")

	var empty SimpleCache[int]
	empty.Initialize(1)
	assert.True(t, empty.MustExplore(0, 1, 0))
}

func TestNoCache(t *testing.T) {
	var c Cache[int] = NoCache[int]{}
	c.UpdateThreshold(1, 0, Threshold{Value: 100, Explored: true})
	assert.True(t, c.MustExplore(1, 0, -100))
	_, ok := c.Threshold(1, 0)
	assert.False(t, ok)
}
