package ddo

import (
	"iter"
)

// Problem describes a discrete optimization problem as a sequential decision
// process. All methods must be pure: the same arguments always yield the same
// result. Cache and dominance pruning rely on it.
type Problem[T comparable] interface {
	// NbVars is the number of decision variables.
	NbVars() int
	// InitialState is the state of the root subproblem.
	InitialState() T
	// InitialValue is the value of the root subproblem.
	InitialValue() float64
	// Domain enumerates the values that variable can take from state. An
	// empty sequence is a dead end.
	Domain(state T, variable int) iter.Seq[int]
	// Transition returns the state reached by applying d to state.
	Transition(state T, d Decision) T
	// TransitionCost returns the value collected when applying d to state.
	TransitionCost(state T, d Decision) float64
}

// Relaxation merges states when a relaxed diagram layer overflows its width.
//
// Contract: the merged state must over-approximate every merged state, and
// RelaxEdge must not decrease the value of any path, so that the relaxed
// diagram yields an upper bound.
type Relaxation[T comparable] interface {
	MergeStates(states iter.Seq[T]) T
	RelaxEdge(from, to, merged T, d Decision, cost float64) float64
}

// StateRanking orders states by how promising they are. Compare returns a
// positive number when a is more promising than b.
type StateRanking[T comparable] interface {
	Compare(a, b T) int
}

// FastUpperBound gives an admissible upper bound on the value collectable
// from state when the variables of unassigned are still free.
type FastUpperBound[T comparable] interface {
	FastUpperBound(state T, unassigned []int) float64
}

// FastLowerBound is the minimization counterpart of FastUpperBound.
type FastLowerBound[T comparable] interface {
	FastLowerBound(state T, unassigned []int) float64
}

// VariableHeuristic picks the next branching variable among unassigned for
// a layer whose states are given.
type VariableHeuristic[T comparable] interface {
	NextVariable(depth int, unassigned []int, states iter.Seq[T]) int
}

// WidthHeuristic gives the maximum layer width of a diagram rooted at sub.
type WidthHeuristic[T comparable] interface {
	MaxWidth(sub SubProblem[T]) int
}

// Model groups the collaborators of a problem. Only Problem is mandatory for
// every driver; each driver documents which other fields it requires.
type Model[T comparable] struct {
	Problem    Problem[T]
	Relaxation Relaxation[T]
	Ranking    StateRanking[T]
	UpperBound FastUpperBound[T]
	LowerBound FastLowerBound[T]
	Variables  VariableHeuristic[T]
	Width      WidthHeuristic[T]
	Dominance  DominanceChecker[T]
}
