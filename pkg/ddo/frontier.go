package ddo

import (
	"math"
	"sync"
)

// CutSetType selects which exact nodes of a relaxed diagram are pushed back
// to the frontier.
type CutSetType int

const (
	// LastExactLayer uses the deepest layer whose nodes are all exact.
	LastExactLayer CutSetType = iota
	// FrontierCutSet uses the exact nodes having at least one inexact child.
	FrontierCutSet
)

func (c CutSetType) String() string {
	switch c {
	case LastExactLayer:
		return "lel"
	case FrontierCutSet:
		return "frontier"
	default:
		return "unknown"
	}
}

// Frontier is the open set of subproblems, best F() first.
//
// Contract: PeekBestBound is an upper bound of F() over every subproblem in
// the frontier.
type Frontier[T comparable] interface {
	Push(sub SubProblem[T])
	// Pop removes the subproblem with the highest F(). ok is false when the
	// frontier is empty.
	Pop() (sub SubProblem[T], ok bool)
	// PeekBestBound returns -Inf when the frontier is empty.
	PeekBestBound() float64
	IsEmpty() bool
	Size() int
	Clear()
	CutSetType() CutSetType
	// MinDepth is the smallest depth of a stored subproblem, or -1.
	MinDepth() int
}

// SimpleFrontier is a Frontier guarded by one mutex per operation.
type SimpleFrontier[T comparable] struct {
	mu     sync.Mutex
	queue  *pqueue[T]
	depths map[int]int
	cutset CutSetType
}

// NewSimpleFrontier returns an empty frontier.
func NewSimpleFrontier[T comparable](cutset CutSetType) *SimpleFrontier[T] {
	return &SimpleFrontier[T]{
		queue:  newPQueue[T](),
		depths: make(map[int]int),
		cutset: cutset,
	}
}

func (f *SimpleFrontier[T]) Push(sub SubProblem[T]) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue.push(sub, sub.F())
	f.depths[sub.Depth]++
}

func (f *SimpleFrontier[T]) Pop() (SubProblem[T], bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, _, ok := f.queue.pop()
	if !ok {
		return sub, false
	}
	if f.depths[sub.Depth]--; f.depths[sub.Depth] == 0 {
		delete(f.depths, sub.Depth)
	}
	return sub, true
}

func (f *SimpleFrontier[T]) PeekBestBound() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.queue.peek()
	if !ok {
		return math.Inf(-1)
	}
	return p
}

func (f *SimpleFrontier[T]) IsEmpty() bool {
	return f.Size() == 0
}

func (f *SimpleFrontier[T]) Size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue.len()
}

func (f *SimpleFrontier[T]) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue.clear()
	clear(f.depths)
}

func (f *SimpleFrontier[T]) CutSetType() CutSetType {
	return f.cutset
}

func (f *SimpleFrontier[T]) MinDepth() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	best := -1
	for d := range f.depths {
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}
