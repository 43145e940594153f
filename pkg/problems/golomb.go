package problems

import (
	"iter"
	"math/bits"

	"github.com/pkg/errors"

	"github.com/gitrdm/ddo/pkg/ddo"
)

// maxGolombLength bounds mark positions so that marks and distances fit
// in 64 bit sets.
const maxGolombLength = 63

// Golomb looks for the shortest ruler with Marks marks whose pairwise
// distances are all different. Mark 0 sits at 0 and variable i places mark
// i+1. The value of a ruler is its negated length.
type Golomb struct {
	Marks int `yaml:"marks" json:"marks"`
	// MaxLength caps mark positions. Zero means min(Marks², 63).
	MaxLength int `yaml:"max_length,omitempty" json:"max_length,omitempty"`
}

// GolombState is a partial ruler. Merged states keep the marks and
// distances common to every ruler and the smallest last mark.
type GolombState struct {
	Marks uint64
	Dists uint64
	Last  int
}

// Validate checks the instance.
func (g *Golomb) Validate() error {
	if g.Marks < 1 {
		return errors.Errorf("golomb: need at least one mark, got %d", g.Marks)
	}
	if g.MaxLength < 0 || g.MaxLength > maxGolombLength {
		return errors.Errorf("golomb: max length must be within [0, %d], got %d", maxGolombLength, g.MaxLength)
	}
	return nil
}

// Model returns the collaborators of the instance.
func (g *Golomb) Model() ddo.Model[GolombState] {
	return ddo.Model[GolombState]{
		Problem:    g,
		Relaxation: g,
		Ranking:    g,
		UpperBound: g,
	}
}

func (g *Golomb) maxLength() int {
	if g.MaxLength > 0 {
		return g.MaxLength
	}
	return min(g.Marks*g.Marks, maxGolombLength)
}

func (g *Golomb) NbVars() int               { return g.Marks - 1 }
func (g *Golomb) InitialState() GolombState { return GolombState{Marks: 1} }
func (g *Golomb) InitialValue() float64     { return 0 }

// Domain yields the positions after the last mark that add no repeated
// distance.
func (g *Golomb) Domain(state GolombState, _ int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for p := state.Last + 1; p <= g.maxLength(); p++ {
			if _, ok := newDistances(state, p); ok && !yield(p) {
				return
			}
		}
	}
}

// newDistances returns the distances added by a mark at p, and false when
// one of them is already taken.
func newDistances(state GolombState, p int) (uint64, bool) {
	var added uint64
	for m := state.Marks; m != 0; m &= m - 1 {
		bit := uint64(1) << (p - bits.TrailingZeros64(m))
		if state.Dists&bit != 0 {
			return 0, false
		}
		added |= bit
	}
	return added, true
}

func (g *Golomb) Transition(state GolombState, d ddo.Decision) GolombState {
	added, _ := newDistances(state, d.Value)
	return GolombState{
		Marks: state.Marks | 1<<d.Value,
		Dists: state.Dists | added,
		Last:  d.Value,
	}
}

func (g *Golomb) TransitionCost(state GolombState, d ddo.Decision) float64 {
	return -float64(d.Value - state.Last)
}

func (g *Golomb) MergeStates(states iter.Seq[GolombState]) GolombState {
	first := true
	var merged GolombState
	for s := range states {
		if first {
			merged, first = s, false
			continue
		}
		merged.Marks &= s.Marks
		merged.Dists &= s.Dists
		merged.Last = min(merged.Last, s.Last)
	}
	return merged
}

// RelaxEdge refunds the distance between the original and the merged last
// mark, which the next edge charges again.
func (g *Golomb) RelaxEdge(_, to, merged GolombState, _ ddo.Decision, cost float64) float64 {
	return cost + float64(to.Last-merged.Last)
}

// Compare prefers shorter partial rulers.
func (g *Golomb) Compare(a, b GolombState) int {
	if a.Last != b.Last {
		return b.Last - a.Last
	}
	return bits.OnesCount64(a.Dists) - bits.OnesCount64(b.Dists)
}

// FastUpperBound: the gaps between the remaining marks are distinct
// distances not used yet, so the ruler grows at least by the sum of the
// smallest free distances.
func (g *Golomb) FastUpperBound(state GolombState, unassigned []int) float64 {
	need := len(unassigned)
	total := 0
	for d := 1; need > 0; d++ {
		if d > maxGolombLength || state.Dists&(1<<d) == 0 {
			total += d
			need--
		}
	}
	return -float64(total)
}

// Ruler returns the mark positions of solution, starting with 0.
func (g *Golomb) Ruler(solution []ddo.Decision) []int {
	marks := make([]int, g.Marks)
	for _, d := range solution {
		if d.Var+1 < len(marks) {
			marks[d.Var+1] = d.Value
		}
	}
	return marks
}

// IsGolombRuler reports whether marks are increasing with pairwise distinct
// distances.
func IsGolombRuler(marks []int) bool {
	seen := make(map[int]bool)
	for i := 1; i < len(marks); i++ {
		if marks[i] <= marks[i-1] {
			return false
		}
		for j := 0; j < i; j++ {
			d := marks[i] - marks[j]
			if seen[d] {
				return false
			}
			seen[d] = true
		}
	}
	return true
}
