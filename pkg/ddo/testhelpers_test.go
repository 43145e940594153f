package ddo

import (
	"iter"
	"math/rand/v2"
	"os"
	"sync"
)

// shouldRunHeavy returns true when heavy/long-running tests should run even
// if the Go test suite is invoked in short mode. Set DDO_FORCE_HEAVY=1
// (or "true") to override short-mode skips.
func shouldRunHeavy() bool {
	v := os.Getenv("DDO_FORCE_HEAVY")
	return v == "1" || v == "true" || v == "TRUE" || v == "True"
}

// knap is a 0/1 knapsack whose state is the remaining capacity. It carries
// every collaborator the drivers need.
type knap struct {
	capacity int
	weight   []int
	profit   []int
}

func (k *knap) NbVars() int           { return len(k.weight) }
func (k *knap) InitialState() int     { return k.capacity }
func (k *knap) InitialValue() float64 { return 0 }

func (k *knap) Domain(state int, v int) iter.Seq[int] {
	return func(yield func(int) bool) {
		if !yield(0) {
			return
		}
		if k.weight[v] <= state {
			yield(1)
		}
	}
}

func (k *knap) Transition(state int, d Decision) int {
	return state - d.Value*k.weight[d.Var]
}

func (k *knap) TransitionCost(_ int, d Decision) float64 {
	return float64(d.Value * k.profit[d.Var])
}

func (k *knap) MergeStates(states iter.Seq[int]) int {
	best := 0
	for s := range states {
		best = max(best, s)
	}
	return best
}

func (k *knap) RelaxEdge(_, _, _ int, _ Decision, cost float64) float64 { return cost }

func (k *knap) Compare(a, b int) int { return a - b }

// FastUpperBound sums the profits of the free items that still fit alone.
func (k *knap) FastUpperBound(state int, free []int) float64 {
	total := 0
	for _, v := range free {
		if k.weight[v] <= state {
			total += k.profit[v]
		}
	}
	return float64(total)
}

func (k *knap) model() Model[int] {
	return Model[int]{Problem: k, Relaxation: k, Ranking: k, UpperBound: k}
}

// knapDominance: with a fixed variable order, more capacity left is never
// worse.
type knapDominance struct{}

func (knapDominance) Key(int) (struct{}, bool) { return struct{}{}, true }
func (knapDominance) Dominates(a, b int) bool  { return a >= b }

// bruteForce enumerates every assignment.
func (k *knap) bruteForce() float64 {
	n := len(k.weight)
	best := 0
	for mask := 0; mask < 1<<n; mask++ {
		w, p := 0, 0
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				w += k.weight[i]
				p += k.profit[i]
			}
		}
		if w <= k.capacity && p > best {
			best = p
		}
	}
	return float64(best)
}

// evaluate returns the value and weight of a solution.
func (k *knap) evaluate(sol []Decision) (float64, int) {
	p, w := 0, 0
	for _, d := range sol {
		p += d.Value * k.profit[d.Var]
		w += d.Value * k.weight[d.Var]
	}
	return float64(p), w
}

func randomKnap(seed uint64, n int) *knap {
	r := rand.New(rand.NewPCG(seed, 7))
	k := &knap{weight: make([]int, n), profit: make([]int, n)}
	total := 0
	for i := 0; i < n; i++ {
		k.weight[i] = 1 + r.IntN(20)
		k.profit[i] = 1 + r.IntN(30)
		total += k.weight[i]
	}
	k.capacity = total / 2
	return k
}

// costKnap is knap with negated profits, to be minimized.
type costKnap struct{ *knap }

func (c costKnap) TransitionCost(s int, d Decision) float64 { return -c.knap.TransitionCost(s, d) }
func (c costKnap) FastLowerBound(s int, free []int) float64 { return -c.knap.FastUpperBound(s, free) }

func (c costKnap) model() Model[int] {
	return Model[int]{Problem: c, Relaxation: c, Ranking: c, LowerBound: c}
}

// flaky returns a different state on every second call of Transition.
type flaky struct {
	*knap
	mu    sync.Mutex
	calls int
}

func (f *flaky) Transition(state int, d Decision) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls%2 == 0 {
		return state - 1000
	}
	return f.knap.Transition(state, d)
}
