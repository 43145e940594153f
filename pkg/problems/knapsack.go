package problems

import (
	"iter"
	"slices"

	"github.com/pkg/errors"

	"github.com/gitrdm/ddo/pkg/ddo"
)

// Item is one knapsack item.
type Item struct {
	Weight int `yaml:"weight" json:"weight"`
	Profit int `yaml:"profit" json:"profit"`
}

// Knapsack is a 0/1 knapsack instance. Variable i decides whether item i is
// packed, the state is the remaining capacity.
type Knapsack struct {
	Name     string `yaml:"name" json:"name"`
	Capacity int    `yaml:"capacity" json:"capacity"`
	Items    []Item `yaml:"items" json:"items"`

	// items sorted by decreasing profit/weight ratio
	byRatio []int
}

// Validate checks the instance.
func (k *Knapsack) Validate() error {
	if k.Capacity < 0 {
		return errors.Errorf("knapsack %q: negative capacity %d", k.Name, k.Capacity)
	}
	for i, it := range k.Items {
		if it.Weight < 0 || it.Profit < 0 {
			return errors.Errorf("knapsack %q: item %d has a negative weight or profit", k.Name, i)
		}
	}
	return nil
}

// Model returns the collaborators of the instance, with the capacity
// dominance enabled.
func (k *Knapsack) Model() ddo.Model[int] {
	k.prepare()
	return ddo.Model[int]{
		Problem:    k,
		Relaxation: k,
		Ranking:    k,
		UpperBound: k,
		Dominance:  ddo.NewSimpleDominanceChecker[int, struct{}](KnapsackDominance{}, k.NbVars()),
	}
}

func (k *Knapsack) prepare() {
	if k.byRatio != nil {
		return
	}
	k.byRatio = make([]int, len(k.Items))
	for i := range k.byRatio {
		k.byRatio[i] = i
	}
	slices.SortStableFunc(k.byRatio, func(a, b int) int {
		// p_a/w_a > p_b/w_b without dividing by zero weights
		l := k.Items[a].Profit * k.Items[b].Weight
		r := k.Items[b].Profit * k.Items[a].Weight
		return r - l
	})
}

func (k *Knapsack) NbVars() int           { return len(k.Items) }
func (k *Knapsack) InitialState() int     { return k.Capacity }
func (k *Knapsack) InitialValue() float64 { return 0 }

func (k *Knapsack) Domain(state int, variable int) iter.Seq[int] {
	return func(yield func(int) bool) {
		if k.Items[variable].Weight <= state && !yield(1) {
			return
		}
		yield(0)
	}
}

func (k *Knapsack) Transition(state int, d ddo.Decision) int {
	return state - d.Value*k.Items[d.Var].Weight
}

func (k *Knapsack) TransitionCost(_ int, d ddo.Decision) float64 {
	return float64(d.Value * k.Items[d.Var].Profit)
}

// MergeStates keeps the largest remaining capacity.
func (k *Knapsack) MergeStates(states iter.Seq[int]) int {
	merged := 0
	for s := range states {
		merged = max(merged, s)
	}
	return merged
}

func (k *Knapsack) RelaxEdge(_, _, _ int, _ ddo.Decision, cost float64) float64 {
	return cost
}

// Compare ranks states with more capacity left first.
func (k *Knapsack) Compare(a, b int) int { return a - b }

// FastUpperBound is the fractional (linear relaxation) bound of the free
// items.
func (k *Knapsack) FastUpperBound(state int, unassigned []int) float64 {
	free := make([]bool, len(k.Items))
	for _, v := range unassigned {
		free[v] = true
	}
	capacity := float64(state)
	bound := 0.0
	for _, i := range k.byRatio {
		if !free[i] {
			continue
		}
		it := k.Items[i]
		if float64(it.Weight) <= capacity {
			capacity -= float64(it.Weight)
			bound += float64(it.Profit)
			continue
		}
		bound += float64(it.Profit) * capacity / float64(it.Weight)
		break
	}
	return bound
}

// Evaluate returns the profit and weight of a solution.
func (k *Knapsack) Evaluate(solution []ddo.Decision) (profit, weight int) {
	for _, d := range solution {
		profit += d.Value * k.Items[d.Var].Profit
		weight += d.Value * k.Items[d.Var].Weight
	}
	return profit, weight
}

// KnapsackDominance: for the same items left, more capacity is never worse.
type KnapsackDominance struct{}

func (KnapsackDominance) Key(int) (struct{}, bool) { return struct{}{}, true }
func (KnapsackDominance) Dominates(a, b int) bool  { return a >= b }
