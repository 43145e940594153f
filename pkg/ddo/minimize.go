package ddo

import (
	"iter"
)

// Minimization is solved as the maximization of the negated objective. The
// adapters below flip every value crossing the collaborator boundary; states,
// domains and rankings are untouched.

type negatedProblem[T comparable] struct {
	inner Problem[T]
}

func (p negatedProblem[T]) NbVars() int           { return p.inner.NbVars() }
func (p negatedProblem[T]) InitialState() T       { return p.inner.InitialState() }
func (p negatedProblem[T]) InitialValue() float64 { return -p.inner.InitialValue() }

func (p negatedProblem[T]) Domain(state T, variable int) iter.Seq[int] {
	return p.inner.Domain(state, variable)
}

func (p negatedProblem[T]) Transition(state T, d Decision) T {
	return p.inner.Transition(state, d)
}

func (p negatedProblem[T]) TransitionCost(state T, d Decision) float64 {
	return -p.inner.TransitionCost(state, d)
}

type negatedRelaxation[T comparable] struct {
	inner Relaxation[T]
}

func (r negatedRelaxation[T]) MergeStates(states iter.Seq[T]) T {
	return r.inner.MergeStates(states)
}

func (r negatedRelaxation[T]) RelaxEdge(from, to, merged T, d Decision, cost float64) float64 {
	return -r.inner.RelaxEdge(from, to, merged, d, -cost)
}

type lowerAsUpper[T comparable] struct {
	inner FastLowerBound[T]
}

func (b lowerAsUpper[T]) FastUpperBound(state T, unassigned []int) float64 {
	return -b.inner.FastLowerBound(state, unassigned)
}

// negated returns the maximization model equivalent to minimizing m.
func (m Model[T]) negated() Model[T] {
	out := m
	out.Problem = negatedProblem[T]{inner: m.Problem}
	if m.Relaxation != nil {
		out.Relaxation = negatedRelaxation[T]{inner: m.Relaxation}
	}
	out.UpperBound = nil
	if m.LowerBound != nil {
		out.UpperBound = lowerAsUpper[T]{inner: m.LowerBound}
	}
	out.LowerBound = nil
	return out
}
