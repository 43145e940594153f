package ddo

import (
	"math"
	"slices"

	"github.com/pkg/errors"
)

// CompilationType selects how a Diagram handles layers wider than the max
// width.
type CompilationType int

const (
	// Exact never limits the width.
	Exact CompilationType = iota
	// Restricted drops the least promising nodes.
	Restricted
	// Relaxed merges the least promising nodes.
	Relaxed
)

func (c CompilationType) String() string {
	switch c {
	case Exact:
		return "exact"
	case Restricted:
		return "restricted"
	case Relaxed:
		return "relaxed"
	default:
		return "unknown"
	}
}

// CompilationInput carries everything a Diagram needs to compile one
// subproblem.
type CompilationInput[T comparable] struct {
	Type       CompilationType
	Problem    Problem[T]
	Relaxation Relaxation[T]
	Ranking    StateRanking[T]
	Variables  VariableHeuristic[T]
	UpperBound FastUpperBound[T]
	Dominance  DominanceChecker[T]
	Cache      Cache[T]
	CutSetType CutSetType
	Residual   SubProblem[T]
	MaxWidth   int
	// BestLB is the incumbent value; nodes whose value + bound cannot beat it
	// are not expanded. Use -Inf when there is no incumbent.
	BestLB float64
	// Stop is polled once per layer. Compile returns ErrCompilationCutoff
	// when it reports true.
	Stop func() bool
	// Check validates transitions when set (see ValidateTransition).
	Check func(state T, d Decision, next T) error
}

type nodeFlags uint8

const (
	flagExact nodeFlags = 1 << iota
	flagDeleted
	flagCutset
	flagPrunedByBound
	flagPrunedByCache
	flagPrunedByDominance
)

type node[T comparable] struct {
	state    T
	layer    int
	valueTop float64
	valueBot float64
	rub      float64
	theta    float64
	inbound  int
	best     int
	flags    nodeFlags
}

func (n *node[T]) is(f nodeFlags) bool { return n.flags&f != 0 }

type edge struct {
	from     int
	decision Decision
	cost     float64
	next     int
}

// Diagram is a layered decision diagram stored in an arena: nodes and
// edges live in flat slices and refer to each other by index. A Diagram is
// reused across compilations and is not safe for concurrent use.
type Diagram[T comparable] struct {
	nodes  []node[T]
	edges  []edge
	layers [][]int

	residual SubProblem[T]
	nbVars   int
	ctype    CompilationType

	exact             bool
	lel               int
	bestTerminal      int
	bestExactTerminal int
	cutset            []int

	violations int
	lastError  error
}

// NewDiagram returns an empty diagram.
func NewDiagram[T comparable]() *Diagram[T] {
	return &Diagram[T]{bestTerminal: -1, bestExactTerminal: -1}
}

func (d *Diagram[T]) reset(in CompilationInput[T]) {
	d.nodes = d.nodes[:0]
	d.edges = d.edges[:0]
	d.layers = d.layers[:0]
	d.residual = in.Residual
	d.nbVars = in.Problem.NbVars()
	d.ctype = in.Type
	d.exact = true
	d.lel = -1
	d.bestTerminal = -1
	d.bestExactTerminal = -1
	d.cutset = d.cutset[:0]
	d.violations = 0
	d.lastError = nil
}

func validateInput[T comparable](in CompilationInput[T]) error {
	if in.Problem == nil {
		return ErrMissingProblem
	}
	if in.Type == Exact {
		return nil
	}
	if in.MaxWidth < 1 {
		return errors.Wrapf(ErrInvalidWidth, "got %d", in.MaxWidth)
	}
	if in.Ranking == nil {
		return ErrMissingRanking
	}
	if in.Type == Relaxed && in.Relaxation == nil {
		return ErrMissingRelaxation
	}
	return nil
}

// Compile grows the diagram rooted at in.Residual one variable per layer
// until every variable is assigned.
//
// Contract:
//   - Exact compilations ignore MaxWidth.
//   - Restricted compilations keep the MaxWidth best nodes of a layer,
//     ordered by value then Ranking.
//   - Relaxed compilations keep MaxWidth-1 nodes and merge the others. The
//     layer right below the root is never merged.
//   - Exact nodes are checked against Dominance then Cache; pruned nodes
//     leave the layer but their thresholds still reach their parents.
//   - Relaxed compilations and exact diagrams write thresholds to Cache.
func (d *Diagram[T]) Compile(in CompilationInput[T]) error {
	if err := validateInput(in); err != nil {
		return err
	}
	if in.Variables == nil {
		in.Variables = NaturalOrder[T]{}
	}
	if in.Dominance == nil {
		in.Dominance = NoDominance[T]{}
	}
	if in.Cache == nil {
		in.Cache = NoCache[T]{}
	}
	d.reset(in)

	root := d.addNode(in.Residual.State, 0, in.Residual.Value, true)
	d.nodes[root].rub = in.Residual.Bound
	d.layers = append(d.layers, []int{root})

	free := unassigned(d.nbVars, in.Residual.Path)
	for depth := in.Residual.Depth; depth < d.nbVars && len(free) > 0; depth++ {
		if in.Stop != nil && in.Stop() {
			return ErrCompilationCutoff
		}
		current := d.layers[len(d.layers)-1]
		if len(current) == 0 {
			break
		}

		v := in.Variables.NextVariable(depth, free, d.layerStates(current))
		i := slices.Index(free, v)
		if i < 0 {
			return errors.Errorf("ddo: variable heuristic picked %d which is not free", v)
		}
		free = slices.Delete(slices.Clone(free), i, i+1)

		next := d.branch(in, current, v)
		next = d.filter(in, next, depth+1, free)
		next = d.squash(in, next, len(d.layers), free)
		d.layers = append(d.layers, next)
	}

	d.finalize(in)
	return nil
}

func (d *Diagram[T]) addNode(state T, layer int, value float64, exact bool) int {
	n := node[T]{
		state:    state,
		layer:    layer,
		valueTop: value,
		valueBot: math.Inf(-1),
		theta:    math.Inf(1),
		inbound:  -1,
		best:     -1,
	}
	if exact {
		n.flags |= flagExact
	}
	d.nodes = append(d.nodes, n)
	return len(d.nodes) - 1
}

func (d *Diagram[T]) addEdge(from, to int, dec Decision, cost float64) {
	d.edges = append(d.edges, edge{from: from, decision: dec, cost: cost, next: d.nodes[to].inbound})
	e := len(d.edges) - 1
	n := &d.nodes[to]
	n.inbound = e
	value := d.nodes[from].valueTop + cost
	if n.best < 0 || value > n.valueTop {
		n.valueTop = value
		n.best = e
	}
	if !d.nodes[from].is(flagExact) {
		n.flags &^= flagExact
	}
}

func (d *Diagram[T]) layerStates(layer []int) func(func(T) bool) {
	return func(yield func(T) bool) {
		for _, i := range layer {
			if !yield(d.nodes[i].state) {
				return
			}
		}
	}
}

// branch expands every node of current on variable v.
func (d *Diagram[T]) branch(in CompilationInput[T], current []int, v int) []int {
	layer := len(d.layers)
	children := make(map[T]int)
	var next []int
	for _, i := range current {
		n := d.nodes[i]
		if n.valueTop+n.rub <= in.BestLB {
			d.nodes[i].flags |= flagPrunedByBound
			continue
		}
		for value := range in.Problem.Domain(n.state, v) {
			dec := Decision{Var: v, Value: value}
			state := in.Problem.Transition(n.state, dec)
			if in.Check != nil {
				if err := in.Check(n.state, dec, state); err != nil {
					d.violations++
					d.lastError = err
				}
			}
			cost := in.Problem.TransitionCost(n.state, dec)

			c, ok := children[state]
			if !ok {
				c = d.addNode(state, layer, math.Inf(-1), n.is(flagExact))
				children[state] = c
				next = append(next, c)
			}
			d.addEdge(i, c, dec, cost)
		}
	}
	return next
}

func (d *Diagram[T]) bound(in CompilationInput[T], state T, free []int) float64 {
	if len(free) == 0 {
		return 0
	}
	if in.UpperBound == nil {
		return math.Inf(1)
	}
	return in.UpperBound.FastUpperBound(state, free)
}

// filter computes the local bounds of a fresh layer and removes the exact
// nodes pruned by dominance or by the cache.
func (d *Diagram[T]) filter(in CompilationInput[T], next []int, depth int, free []int) []int {
	kept := next[:0]
	for _, i := range next {
		n := &d.nodes[i]
		n.rub = d.bound(in, n.state, free)
		if n.is(flagExact) {
			if in.Dominance.UpdateDominance(n.state, depth, n.valueTop) {
				n.flags |= flagPrunedByDominance
				continue
			}
			if !in.Cache.MustExplore(n.state, depth, n.valueTop) {
				n.flags |= flagPrunedByCache
				if t, ok := in.Cache.Threshold(n.state, depth); ok {
					n.theta = t.Value
				}
				continue
			}
		}
		kept = append(kept, i)
	}
	return kept
}

// squash enforces the max width on a layer.
func (d *Diagram[T]) squash(in CompilationInput[T], next []int, layer int, free []int) []int {
	if in.Type == Exact || len(next) <= in.MaxWidth {
		return next
	}
	if in.Type == Relaxed && layer == 1 {
		return next
	}

	slices.SortStableFunc(next, func(a, b int) int {
		na, nb := &d.nodes[a], &d.nodes[b]
		if na.valueTop != nb.valueTop {
			if na.valueTop > nb.valueTop {
				return -1
			}
			return 1
		}
		return -in.Ranking.Compare(na.state, nb.state)
	})

	d.exact = false
	if in.Type == Restricted {
		for _, i := range next[in.MaxWidth:] {
			d.nodes[i].flags |= flagDeleted
		}
		return next[:in.MaxWidth]
	}

	if d.lel < 0 {
		d.lel = layer - 1
	}
	keep, merge := next[:in.MaxWidth-1], next[in.MaxWidth-1:]
	merged := in.Relaxation.MergeStates(func(yield func(T) bool) {
		for _, i := range merge {
			if !yield(d.nodes[i].state) {
				return
			}
		}
	})

	target := -1
	for _, i := range keep {
		if d.nodes[i].state == merged {
			target = i
			break
		}
	}
	fresh := target < 0
	if fresh {
		target = d.addNode(merged, layer, math.Inf(-1), false)
		d.nodes[target].rub = d.bound(in, merged, free)
	}
	d.nodes[target].flags &^= flagExact

	for _, i := range merge {
		if i == target {
			continue
		}
		m := &d.nodes[i]
		m.flags |= flagDeleted
		for e := m.inbound; e >= 0; e = d.edges[e].next {
			ed := d.edges[e]
			cost := in.Relaxation.RelaxEdge(d.nodes[ed.from].state, m.state, merged, ed.decision, ed.cost)
			d.addEdge(ed.from, target, ed.decision, cost)
		}
	}

	out := make([]int, 0, in.MaxWidth)
	out = append(out, keep...)
	if fresh {
		out = append(out, target)
	}
	return out
}

func (d *Diagram[T]) finalize(in CompilationInput[T]) {
	last := d.layers[len(d.layers)-1]
	depth := d.residual.Depth + len(d.layers) - 1
	if depth == d.nbVars {
		for _, i := range last {
			n := &d.nodes[i]
			if d.bestTerminal < 0 || n.valueTop > d.nodes[d.bestTerminal].valueTop {
				d.bestTerminal = i
			}
			if n.is(flagExact) && (d.bestExactTerminal < 0 || n.valueTop > d.nodes[d.bestExactTerminal].valueTop) {
				d.bestExactTerminal = i
			}
		}
	}

	if !d.exact && in.Type == Relaxed {
		d.computeLocalBounds()
		d.computeCutset(in.CutSetType)
	}
	if in.Type == Relaxed || d.exact {
		d.computeThresholds(in)
	}
}

// computeLocalBounds sets valueBot, the longest path from each node to a
// terminal node, by walking the layers bottom up.
func (d *Diagram[T]) computeLocalBounds() {
	for l := len(d.layers) - 1; l >= 0; l-- {
		for _, i := range d.layers[l] {
			n := &d.nodes[i]
			if d.residual.Depth+l == d.nbVars {
				n.valueBot = 0
			}
			if math.IsInf(n.valueBot, -1) {
				continue
			}
			for e := n.inbound; e >= 0; e = d.edges[e].next {
				ed := d.edges[e]
				p := &d.nodes[ed.from]
				p.valueBot = max(p.valueBot, ed.cost+n.valueBot)
			}
		}
	}
}

func (d *Diagram[T]) computeCutset(kind CutSetType) {
	switch kind {
	case LastExactLayer:
		for _, i := range d.layers[d.lel] {
			if !d.nodes[i].is(flagPrunedByBound) {
				d.nodes[i].flags |= flagCutset
				d.cutset = append(d.cutset, i)
			}
		}
	case FrontierCutSet:
		for l := 1; l < len(d.layers); l++ {
			for _, i := range d.layers[l] {
				n := d.nodes[i]
				if n.is(flagExact) {
					continue
				}
				for e := n.inbound; e >= 0; e = d.edges[e].next {
					p := &d.nodes[d.edges[e].from]
					if p.is(flagExact) && !p.is(flagCutset) && !p.is(flagPrunedByBound) {
						p.flags |= flagCutset
						d.cutset = append(d.cutset, d.edges[e].from)
					}
				}
			}
		}
	}
}

// computeThresholds derives, bottom up, the value under which each exact
// node is not worth reaching again, and writes it to the cache.
func (d *Diagram[T]) computeThresholds(in CompilationInput[T]) {
	bestKnown := in.BestLB
	if d.bestExactTerminal >= 0 {
		bestKnown = max(bestKnown, d.nodes[d.bestExactTerminal].valueTop)
	}
	lelOnly := !d.exact && in.CutSetType == LastExactLayer

	// nodes are created layer by layer, so reverse order visits children
	// before parents
	for i := len(d.nodes) - 1; i >= 0; i-- {
		n := &d.nodes[i]
		if n.is(flagDeleted) || !n.is(flagExact) {
			continue
		}
		if lelOnly && n.layer > d.lel {
			continue
		}
		depth := d.residual.Depth + n.layer
		explored := true
		switch {
		case n.is(flagPrunedByCache):
		case n.is(flagPrunedByDominance):
			n.theta = n.valueTop
		case n.is(flagCutset):
			n.theta = n.valueTop
			explored = false
		case n.is(flagPrunedByBound):
			n.theta = bestKnown - n.rub
		case depth == d.nbVars:
			n.theta = bestKnown
		}
		if !n.is(flagPrunedByCache) {
			in.Cache.UpdateThreshold(n.state, depth, Threshold{Value: n.theta, Explored: explored})
		}
		for e := n.inbound; e >= 0; e = d.edges[e].next {
			ed := d.edges[e]
			p := &d.nodes[ed.from]
			p.theta = min(p.theta, n.theta-ed.cost)
		}
	}
}

// IsExact reports whether no node was dropped or merged.
func (d *Diagram[T]) IsExact() bool { return d.exact }

// BestValue is the value of the best terminal node. For relaxed inexact
// diagrams it is an upper bound.
func (d *Diagram[T]) BestValue() (float64, bool) {
	if d.bestTerminal < 0 {
		return math.Inf(-1), false
	}
	return d.nodes[d.bestTerminal].valueTop, true
}

// BestSolution is the full assignment (residual path included) reaching the
// best terminal node, sorted by variable.
func (d *Diagram[T]) BestSolution() ([]Decision, bool) {
	if d.bestTerminal < 0 {
		return nil, false
	}
	return sortedSolution(d.pathTo(d.bestTerminal)), true
}

// BestExactValue is the value of the best terminal reached only through
// exact nodes. It is always achievable.
func (d *Diagram[T]) BestExactValue() (float64, bool) {
	if d.bestExactTerminal < 0 {
		return math.Inf(-1), false
	}
	return d.nodes[d.bestExactTerminal].valueTop, true
}

// BestExactSolution is the assignment reaching the best exact terminal.
func (d *Diagram[T]) BestExactSolution() ([]Decision, bool) {
	if d.bestExactTerminal < 0 {
		return nil, false
	}
	return sortedSolution(d.pathTo(d.bestExactTerminal)), true
}

// Cutset returns one subproblem per exact cutset node. It is empty for exact
// or restricted diagrams.
func (d *Diagram[T]) Cutset() []SubProblem[T] {
	out := make([]SubProblem[T], 0, len(d.cutset))
	for _, i := range d.cutset {
		n := d.nodes[i]
		path := d.pathTo(i)
		bound := min(n.valueBot, n.rub)
		out = append(out, SubProblem[T]{
			State: n.state,
			Value: n.valueTop,
			Bound: bound,
			Path:  path,
			Depth: len(path),
		})
	}
	return out
}

// Violations returns how many transitions failed validation during the last
// compilation, and the last failure.
func (d *Diagram[T]) Violations() (int, error) { return d.violations, d.lastError }

// pathTo walks best edges back to the root and prepends the residual path.
func (d *Diagram[T]) pathTo(i int) []Decision {
	var rev []Decision
	for e := d.nodes[i].best; e >= 0; e = d.nodes[d.edges[e].from].best {
		rev = append(rev, d.edges[e].decision)
	}
	path := make([]Decision, 0, len(d.residual.Path)+len(rev))
	path = append(path, d.residual.Path...)
	for j := len(rev) - 1; j >= 0; j-- {
		path = append(path, rev[j])
	}
	return path
}
