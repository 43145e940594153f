package ddo

import (
	"cmp"
	"sync"
)

// Threshold is the best value at which a (state, depth) pair was reached
// when it was last compiled, and whether its subtree was fully explored at
// that point.
type Threshold struct {
	Value    float64
	Explored bool
}

// Compare orders thresholds by value, then unexplored before explored.
func (t Threshold) Compare(o Threshold) int {
	if c := cmp.Compare(t.Value, o.Value); c != 0 {
		return c
	}
	switch {
	case t.Explored == o.Explored:
		return 0
	case t.Explored:
		return 1
	default:
		return -1
	}
}

// Cache stores one Threshold per (state, depth).
//
// Contract:
//   - MustExplore is true unless a stored t satisfies value < t.Value, or
//     value == t.Value and t.Explored.
//   - UpdateThreshold never replaces a threshold by a smaller one.
//   - Implementations used with WithWorkers(n > 1) are safe for concurrent use.
type Cache[T comparable] interface {
	// Initialize prepares layers 0..nbVars and drops every stored threshold.
	Initialize(nbVars int)
	MustExplore(state T, depth int, value float64) bool
	Threshold(state T, depth int) (Threshold, bool)
	UpdateThreshold(state T, depth int, t Threshold)
	ClearLayer(depth int)
	// Clear drops the layers 0..n-1.
	Clear(n int)
}

type cacheLayer[T comparable] struct {
	mu         sync.RWMutex
	thresholds map[T]Threshold
}

// SimpleCache is a Cache with one map and one reader/writer lock per depth.
type SimpleCache[T comparable] struct {
	layers []*cacheLayer[T]
}

// NewSimpleCache returns a cache sized for nbVars variables.
func NewSimpleCache[T comparable](nbVars int) *SimpleCache[T] {
	c := &SimpleCache[T]{}
	c.Initialize(nbVars)
	return c
}

func (c *SimpleCache[T]) Initialize(nbVars int) {
	c.layers = make([]*cacheLayer[T], nbVars+1)
	for i := range c.layers {
		c.layers[i] = &cacheLayer[T]{thresholds: make(map[T]Threshold)}
	}
}

func (c *SimpleCache[T]) layer(depth int) *cacheLayer[T] {
	if depth < 0 || depth >= len(c.layers) {
		return nil
	}
	return c.layers[depth]
}

func (c *SimpleCache[T]) MustExplore(state T, depth int, value float64) bool {
	t, ok := c.Threshold(state, depth)
	if !ok {
		return true
	}
	return !(value < t.Value || (value == t.Value && t.Explored))
}

func (c *SimpleCache[T]) Threshold(state T, depth int) (Threshold, bool) {
	l := c.layer(depth)
	if l == nil {
		return Threshold{}, false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.thresholds[state]
	return t, ok
}

func (c *SimpleCache[T]) UpdateThreshold(state T, depth int, t Threshold) {
	l := c.layer(depth)
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	// re-check under the write lock: another worker may have raised it
	if cur, ok := l.thresholds[state]; ok && t.Compare(cur) <= 0 {
		return
	}
	l.thresholds[state] = t
}

func (c *SimpleCache[T]) ClearLayer(depth int) {
	l := c.layer(depth)
	if l == nil {
		return
	}
	l.mu.Lock()
	clear(l.thresholds)
	l.mu.Unlock()
}

func (c *SimpleCache[T]) Clear(n int) {
	for d := 0; d < n && d < len(c.layers); d++ {
		c.ClearLayer(d)
	}
}

// Len returns the number of thresholds stored at depth.
func (c *SimpleCache[T]) Len(depth int) int {
	l := c.layer(depth)
	if l == nil {
		return 0
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.thresholds)
}

// NoCache never prunes anything.
type NoCache[T comparable] struct{}

func (NoCache[T]) Initialize(int)                     {}
func (NoCache[T]) MustExplore(T, int, float64) bool   { return true }
func (NoCache[T]) Threshold(T, int) (Threshold, bool) { return Threshold{}, false }
func (NoCache[T]) UpdateThreshold(T, int, Threshold)  {}
func (NoCache[T]) ClearLayer(int)                     {}
func (NoCache[T]) Clear(int)                          {}
