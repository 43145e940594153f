package ddo

import (
	"iter"
	"math"
)

// NaturalOrder branches on the unassigned variable of lowest index. It is the
// default VariableHeuristic.
type NaturalOrder[T comparable] struct{}

func (NaturalOrder[T]) NextVariable(_ int, unassigned []int, _ iter.Seq[T]) int {
	best := -1
	for _, v := range unassigned {
		if best < 0 || v < best {
			best = v
		}
	}
	return best
}

// FixedWidth caps every layer to W nodes.
type FixedWidth[T comparable] struct {
	W int
}

func (f FixedWidth[T]) MaxWidth(SubProblem[T]) int { return f.W }

// NbUnassignedWidth uses the number of free variables below the subproblem
// as width, with a floor of 1.
type NbUnassignedWidth[T comparable] struct {
	NbVars int
}

func (n NbUnassignedWidth[T]) MaxWidth(sub SubProblem[T]) int {
	return max(1, n.NbVars-sub.Depth)
}

// ScaledWidth multiplies the width of Inner by Factor.
type ScaledWidth[T comparable] struct {
	Factor float64
	Inner  WidthHeuristic[T]
}

func (s ScaledWidth[T]) MaxWidth(sub SubProblem[T]) int {
	w := int(math.Ceil(s.Factor * float64(s.Inner.MaxWidth(sub))))
	return max(1, w)
}
