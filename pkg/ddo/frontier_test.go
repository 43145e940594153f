package ddo

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sub(value, bound float64, depth int) SubProblem[int] {
	path := make([]Decision, depth)
	for i := range path {
		path[i] = Decision{Var: i}
	}
	return SubProblem[int]{State: int(value), Value: value, Bound: bound, Path: path, Depth: depth}
}

func TestSimpleFrontierOrder(t *testing.T) {
	f := NewSimpleFrontier[int](FrontierCutSet)
	assert.Equal(t, FrontierCutSet, f.CutSetType())
	assert.True(t, f.IsEmpty())
	assert.Equal(t, math.Inf(-1), f.PeekBestBound())
	assert.Equal(t, -1, f.MinDepth())

	f.Push(sub(1, 5, 2))  // 6
	f.Push(sub(4, 4, 1))  // 8
	f.Push(sub(0, 3, 3))  // 3
	f.Push(sub(2, 10, 2)) // 12
	assert.Equal(t, 4, f.Size())
	assert.Equal(t, 12.0, f.PeekBestBound())
	assert.Equal(t, 1, f.MinDepth())

	var got []float64
	for !f.IsEmpty() {
		s, ok := f.Pop()
		require.True(t, ok)
		got = append(got, s.F())
	}
	assert.Equal(t, []float64{12, 8, 6, 3}, got)
	_, ok := f.Pop()
	assert.False(t, ok)
}

func TestSimpleFrontierMinDepthAndClear(t *testing.T) {
	f := NewSimpleFrontier[int](LastExactLayer)
	f.Push(sub(1, 1, 3))
	f.Push(sub(9, 9, 1))
	assert.Equal(t, 1, f.MinDepth())
	_, _ = f.Pop()
	assert.Equal(t, 3, f.MinDepth())

	f.Clear()
	assert.True(t, f.IsEmpty())
	assert.Equal(t, -1, f.MinDepth())

	// slots are reused after a clear
	f.Push(sub(2, 2, 0))
	s, ok := f.Pop()
	require.True(t, ok)
	assert.Equal(t, 4.0, s.F())
}

func TestSimpleFrontierPeekKeepsHead(t *testing.T) {
	f := NewSimpleFrontier[int](LastExactLayer)
	f.Push(sub(1, 0, 0))
	f.Push(sub(2, 0, 0))
	assert.Equal(t, 2.0, f.PeekBestBound())
	assert.Equal(t, 2.0, f.PeekBestBound())
	assert.Equal(t, 2, f.Size())
}

func TestSimpleFrontierConcurrent(t *testing.T) {
	f := NewSimpleFrontier[int](LastExactLayer)
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				f.Push(sub(float64(w*1000+i), 0, i%5))
				if i%3 == 0 {
					f.Pop()
				}
			}
		}(w)
	}
	wg.Wait()

	popped := 4 * 84 // i%3 == 0 for 84 values of i in [0, 250)
	assert.Equal(t, 4*250-popped, f.Size())
	prev := math.Inf(1)
	for !f.IsEmpty() {
		s, _ := f.Pop()
		assert.LessOrEqual(t, s.F(), prev)
		prev = s.F()
	}
}
