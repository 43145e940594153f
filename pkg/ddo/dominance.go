package ddo

import (
	"sync"
)

// DominanceChecker decides whether a state reached at depth with value is
// provably no better than a state recorded earlier.
//
// Values are always expressed in the maximization sense, including during
// Minimize.
type DominanceChecker[T comparable] interface {
	// UpdateDominance returns true when the state must be pruned. Otherwise
	// it records the state and returns false.
	UpdateDominance(state T, depth int, value float64) bool
	// Clear forgets every recorded state.
	Clear()
}

// Dominance is a problem specific dominance relation. Only states sharing a
// key are compared.
type Dominance[T comparable, K comparable] interface {
	// Key returns the comparison group of state, or false when state does
	// not take part in dominance checks.
	Key(state T) (K, bool)
	// Dominates reports whether a is at least as good as b for every
	// completion, values aside.
	Dominates(a, b T) bool
}

type dominanceEntry[T comparable] struct {
	state T
	value float64
}

type dominanceLayer[T comparable, K comparable] struct {
	mu      sync.Mutex
	entries map[K][]dominanceEntry[T]
}

// SimpleDominanceChecker keeps, per depth and key, the states that are not
// dominated by one another.
type SimpleDominanceChecker[T comparable, K comparable] struct {
	dominance Dominance[T, K]
	layers    []*dominanceLayer[T, K]
}

// NewSimpleDominanceChecker returns a checker for depths 0..nbVars.
func NewSimpleDominanceChecker[T comparable, K comparable](d Dominance[T, K], nbVars int) *SimpleDominanceChecker[T, K] {
	c := &SimpleDominanceChecker[T, K]{
		dominance: d,
		layers:    make([]*dominanceLayer[T, K], nbVars+1),
	}
	for i := range c.layers {
		c.layers[i] = &dominanceLayer[T, K]{entries: make(map[K][]dominanceEntry[T])}
	}
	return c
}

// UpdateDominance prunes state when a recorded state dominates it with a
// strictly better value, or with an equal value while being a different
// state. Reaching the very same state again with the same value is not a
// reason to prune: the restricted and relaxed compilations of one
// subproblem both visit it.
func (c *SimpleDominanceChecker[T, K]) UpdateDominance(state T, depth int, value float64) bool {
	if depth < 0 || depth >= len(c.layers) {
		return false
	}
	key, ok := c.dominance.Key(state)
	if !ok {
		return false
	}

	l := c.layers[depth]
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.entries[key]
	for _, e := range entries {
		if !c.dominance.Dominates(e.state, state) {
			continue
		}
		if e.value > value || (e.value == value && e.state != state) {
			return true
		}
	}

	kept := entries[:0]
	for _, e := range entries {
		if c.dominance.Dominates(state, e.state) && value >= e.value {
			continue
		}
		kept = append(kept, e)
	}
	l.entries[key] = append(kept, dominanceEntry[T]{state: state, value: value})
	return false
}

func (c *SimpleDominanceChecker[T, K]) Clear() {
	for _, l := range c.layers {
		l.mu.Lock()
		clear(l.entries)
		l.mu.Unlock()
	}
}

// NoDominance never prunes.
type NoDominance[T comparable] struct{}

func (NoDominance[T]) UpdateDominance(T, int, float64) bool { return false }
func (NoDominance[T]) Clear()                               {}
