package problems

import (
	"iter"
	"math"
	"math/bits"
	"slices"

	"github.com/pkg/errors"

	"github.com/gitrdm/ddo/pkg/ddo"
)

// MaxCities is the largest TSP instance the bitset states can hold.
const MaxCities = 64

// TSP is a travelling salesman instance starting and ending at city 0.
// Variable i picks the (i+1)-th city of the tour; the last variable returns
// to the depot. Tours are maximized on their negated length.
type TSP struct {
	Name      string      `yaml:"name" json:"name"`
	Distances [][]float64 `yaml:"distances" json:"distances"`

	// cheapest edge entering each city
	minIn []float64
}

// TSPState is a possibly merged TSP state. An exact state has
// Must == Maybe and a single Position bit.
type TSPState struct {
	// Must holds the cities visited on every path to the state.
	Must uint64
	// Maybe holds the cities visited on some path to the state.
	Maybe uint64
	// Position holds the cities a path to the state may stand on.
	Position uint64
}

// Validate checks the distance matrix.
func (t *TSP) Validate() error {
	n := len(t.Distances)
	if n == 0 || n > MaxCities {
		return errors.Errorf("tsp %q: expected 1 to %d cities, got %d", t.Name, MaxCities, n)
	}
	for i, row := range t.Distances {
		if len(row) != n {
			return errors.Errorf("tsp %q: row %d has %d entries, expected %d", t.Name, i, len(row), n)
		}
		for j, d := range row {
			if math.IsNaN(d) || math.IsInf(d, 0) {
				return errors.Errorf("tsp %q: distance %d->%d is not finite", t.Name, i, j)
			}
		}
	}
	return nil
}

// Model returns the collaborators of the instance.
func (t *TSP) Model() ddo.Model[TSPState] {
	t.prepare()
	return ddo.Model[TSPState]{
		Problem:    t,
		Relaxation: t,
		Ranking:    t,
		UpperBound: t,
	}
}

func (t *TSP) prepare() {
	if t.minIn != nil {
		return
	}
	n := len(t.Distances)
	t.minIn = make([]float64, n)
	for c := 0; c < n; c++ {
		best := math.Inf(1)
		for p := 0; p < n; p++ {
			if p != c {
				best = math.Min(best, t.Distances[p][c])
			}
		}
		if math.IsInf(best, 1) {
			best = 0
		}
		t.minIn[c] = best
	}
}

func (t *TSP) NbVars() int { return len(t.Distances) }

func (t *TSP) InitialState() TSPState {
	return TSPState{Must: 1, Maybe: 1, Position: 1}
}

func (t *TSP) InitialValue() float64 { return 0 }

func (t *TSP) Domain(state TSPState, variable int) iter.Seq[int] {
	return func(yield func(int) bool) {
		n := len(t.Distances)
		if variable == n-1 {
			yield(0)
			return
		}
		for c := 1; c < n; c++ {
			if state.Must&(1<<c) == 0 && !yield(c) {
				return
			}
		}
	}
}

func (t *TSP) Transition(state TSPState, d ddo.Decision) TSPState {
	bit := uint64(1) << d.Value
	return TSPState{Must: state.Must | bit, Maybe: state.Maybe | bit, Position: bit}
}

// TransitionCost is the negated length of the cheapest edge from one of the
// positions of state to the chosen city.
func (t *TSP) TransitionCost(state TSPState, d ddo.Decision) float64 {
	best := math.Inf(1)
	for p := state.Position; p != 0; p &= p - 1 {
		from := bits.TrailingZeros64(p)
		best = math.Min(best, t.Distances[from][d.Value])
	}
	return -best
}

func (t *TSP) MergeStates(states iter.Seq[TSPState]) TSPState {
	merged := TSPState{Must: math.MaxUint64}
	for s := range states {
		merged.Must &= s.Must
		merged.Maybe |= s.Maybe
		merged.Position |= s.Position
	}
	return merged
}

func (t *TSP) RelaxEdge(_, _, _ TSPState, _ ddo.Decision, cost float64) float64 {
	return cost
}

// Compare prefers states that know more about their past.
func (t *TSP) Compare(a, b TSPState) int {
	if c := bits.OnesCount64(a.Must) - bits.OnesCount64(b.Must); c != 0 {
		return c
	}
	return bits.OnesCount64(b.Maybe|b.Position) - bits.OnesCount64(a.Maybe|a.Position)
}

// FastUpperBound charges each remaining step the cheapest edge entering a
// city that may still be visited, and the last step the cheapest edge
// entering the depot.
func (t *TSP) FastUpperBound(state TSPState, unassigned []int) float64 {
	k := len(unassigned)
	if k == 0 {
		return 0
	}
	var candidates []float64
	for c := 1; c < len(t.Distances); c++ {
		if state.Must&(1<<c) == 0 {
			candidates = append(candidates, t.minIn[c])
		}
	}
	slices.Sort(candidates)
	total := t.minIn[0]
	for i := 0; i < k-1 && i < len(candidates); i++ {
		total += candidates[i]
	}
	return -total
}

// TourLength returns the length of the tour described by solution.
func (t *TSP) TourLength(solution []ddo.Decision) float64 {
	sorted := slices.Clone(solution)
	slices.SortFunc(sorted, func(a, b ddo.Decision) int { return a.Var - b.Var })
	length, at := 0.0, 0
	for _, d := range sorted {
		length += t.Distances[at][d.Value]
		at = d.Value
	}
	return length
}

// IsTour reports whether solution visits every city once and ends at the
// depot.
func (t *TSP) IsTour(solution []ddo.Decision) bool {
	n := len(t.Distances)
	if len(solution) != n {
		return false
	}
	seen := make([]bool, n)
	for _, d := range solution {
		if d.Var < 0 || d.Var >= n || d.Value < 0 || d.Value >= n || seen[d.Value] {
			return false
		}
		if (d.Var == n-1) != (d.Value == 0) {
			return false
		}
		seen[d.Value] = true
	}
	return true
}
