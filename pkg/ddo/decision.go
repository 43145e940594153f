package ddo

import (
	"fmt"
	"math"
	"slices"
)

// Decision assigns Value to the variable of index Var.
type Decision struct {
	Var   int `json:"var" yaml:"var"`
	Value int `json:"value" yaml:"value"`
}

func (d Decision) String() string {
	return fmt.Sprintf("x%d=%d", d.Var, d.Value)
}

// SubProblem is a snapshot of search progress: the state reached by Path,
// the value accumulated along that path, and an admissible estimate (Bound)
// of the best value still reachable from State.
//
// Contract:
//   - Depth == len(Path) and Path assigns every variable at most once.
//   - SubProblems are values; Path is never shared between two of them.
//   - Bound is 0 for terminal subproblems.
type SubProblem[T comparable] struct {
	State T
	Value float64
	Bound float64
	Path  []Decision
	Depth int
}

// Root builds the depth 0 subproblem of p. The bound is ub evaluated over
// every variable, or +Inf when ub is nil.
func Root[T comparable](p Problem[T], ub FastUpperBound[T]) SubProblem[T] {
	state := p.InitialState()
	bound := math.Inf(1)
	if p.NbVars() == 0 {
		bound = 0
	} else if ub != nil {
		bound = ub.FastUpperBound(state, allVariables(p.NbVars()))
	}
	return SubProblem[T]{
		State: state,
		Value: p.InitialValue(),
		Bound: bound,
		Depth: 0,
	}
}

// F returns value + bound, the priority of the subproblem in a frontier.
func (s SubProblem[T]) F() float64 {
	return s.Value + s.Bound
}

// UpperBound is an alias of F: no completion of s is worth more.
func (s SubProblem[T]) UpperBound() float64 {
	return s.F()
}

// Child returns the subproblem reached from s by d.
func (s SubProblem[T]) Child(state T, d Decision, cost, bound float64) SubProblem[T] {
	path := make([]Decision, len(s.Path), len(s.Path)+1)
	copy(path, s.Path)
	return SubProblem[T]{
		State: state,
		Value: s.Value + cost,
		Bound: bound,
		Path:  append(path, d),
		Depth: s.Depth + 1,
	}
}

// Solution returns a copy of the path sorted by variable index.
func (s SubProblem[T]) Solution() []Decision {
	return sortedSolution(s.Path)
}

func sortedSolution(path []Decision) []Decision {
	out := slices.Clone(path)
	slices.SortFunc(out, func(a, b Decision) int { return a.Var - b.Var })
	return out
}

func allVariables(n int) []int {
	vars := make([]int, n)
	for i := range vars {
		vars[i] = i
	}
	return vars
}

// unassigned lists the variables that path leaves free, in index order.
func unassigned(nbVars int, path []Decision) []int {
	assigned := make([]bool, nbVars)
	for _, d := range path {
		if d.Var >= 0 && d.Var < nbVars {
			assigned[d.Var] = true
		}
	}
	free := make([]int, 0, nbVars-len(path))
	for v, a := range assigned {
		if !a {
			free = append(free, v)
		}
	}
	return free
}
