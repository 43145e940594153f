package ddo

import (
	"math"
)

type nodeKey[T comparable] struct {
	state T
	depth int
}

// revisits is the open/closed bookkeeping of the A* and column search
// drivers. A (state, depth) pair is only (re)opened with a value strictly
// better than both the best open copy and the value it was closed with.
type revisits[T comparable] struct {
	present map[nodeKey[T]]float64
	closed  map[nodeKey[T]]float64
}

func newRevisits[T comparable]() *revisits[T] {
	return &revisits[T]{
		present: make(map[nodeKey[T]]float64),
		closed:  make(map[nodeKey[T]]float64),
	}
}

// admit records an open copy of k reached with value, unless it does not
// strictly improve on a known copy.
func (v *revisits[T]) admit(k nodeKey[T], value float64) bool {
	if c, ok := v.closed[k]; ok && value <= c {
		return false
	}
	if p, ok := v.present[k]; ok && value <= p {
		return false
	}
	v.present[k] = value
	return true
}

// close moves k from open to closed. It returns false for stale copies,
// superseded by a better one pushed later.
func (v *revisits[T]) close(k nodeKey[T], value float64) bool {
	p, ok := v.present[k]
	if !ok || value < p {
		return false
	}
	delete(v.present, k)
	v.closed[k] = value
	return true
}

// expand enumerates the children of sub along the variable chosen by the
// model heuristic. Children are bounded with ub, or +Inf when ub is nil.
func expand[T comparable](m Model[T], sub SubProblem[T], check func(T, Decision, T) error, yield func(SubProblem[T], error) bool) {
	nbVars := m.Problem.NbVars()
	free := unassigned(nbVars, sub.Path)
	vars := m.Variables
	if vars == nil {
		vars = NaturalOrder[T]{}
	}
	v := vars.NextVariable(sub.Depth, free, func(yield func(T) bool) { yield(sub.State) })
	rest := make([]int, 0, len(free))
	for _, f := range free {
		if f != v {
			rest = append(rest, f)
		}
	}

	for value := range m.Problem.Domain(sub.State, v) {
		d := Decision{Var: v, Value: value}
		state := m.Problem.Transition(sub.State, d)
		var err error
		if check != nil {
			err = check(sub.State, d, state)
		}
		bound := 0.0
		if len(rest) > 0 {
			bound = math.Inf(1)
			if m.UpperBound != nil {
				bound = m.UpperBound.FastUpperBound(state, rest)
			}
		}
		if !yield(sub.Child(state, d, m.Problem.TransitionCost(sub.State, d), bound), err) {
			return
		}
	}
}
