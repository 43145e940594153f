package ddo

import (
	"context"
	"math"
	"sync"
)

// ACSSolver is the anytime column search driver: open subproblems are split
// in one queue (column) per depth, and every iteration expands the best few
// nodes of each column from the top down. Incumbents show up early and the
// gap closes as the columns drain.
//
// Contract:
//   - Model.Problem is required, together with Model.UpperBound for
//     Maximize or Model.LowerBound for Minimize (checked by NewACS under
//     WithDirection).
//   - WithColumnWidth sets the number of nodes expanded per column and
//     iteration (5 by default).
type ACSSolver[T comparable] struct {
	model Model[T]
	cfg   *settings

	mu      sync.Mutex
	value   float64
	best    []Decision
	hasBest bool
}

// NewACS validates the model and options.
func NewACS[T comparable](m Model[T], opts ...Option) (*ACSSolver[T], error) {
	cfg := newSettings(opts)
	if err := validateBoundedModel(m, cfg); err != nil {
		return nil, err
	}
	if cfg.columnWidth < 1 {
		return nil, ErrInvalidColumnWidth
	}
	return &ACSSolver[T]{model: m, cfg: cfg}, nil
}

func (s *ACSSolver[T]) Maximize(ctx context.Context, stop StopCondition, onSolution SolutionCallback) SearchStatistics {
	return s.solve(ctx, s.model, false, stop, onSolution)
}

func (s *ACSSolver[T]) Minimize(ctx context.Context, stop StopCondition, onSolution SolutionCallback) SearchStatistics {
	return s.solve(ctx, s.model.negated(), true, stop, onSolution)
}

func (s *ACSSolver[T]) BestValue() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.hasBest
}

func (s *ACSSolver[T]) BestSolution() ([]Decision, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasBest {
		return nil, false
	}
	return append([]Decision(nil), s.best...), true
}

func (s *ACSSolver[T]) solve(ctx context.Context, m Model[T], minimize bool, stop StopCondition, onSolution SolutionCallback) SearchStatistics {
	nbVars := m.Problem.NbVars()
	r := newSearch[T](ctx, "acs", s.cfg, nbVars, minimize, stop, onSolution)

	var status Status
	if !s.cfg.direction.allows(minimize) || m.UpperBound == nil {
		r.logger.Errorf("ddo: acs needs a fast bound in this direction (minimize=%v)", minimize)
		status = Unknown
	} else {
		status = s.run(r, m)
	}
	st := r.finish(status)

	v, sol, ok := r.result()
	s.mu.Lock()
	s.value, s.best, s.hasBest = v, sol, ok
	s.mu.Unlock()
	return st
}

func (s *ACSSolver[T]) run(r *search[T], m Model[T]) Status {
	nbVars := m.Problem.NbVars()
	dominance := m.Dominance
	if dominance == nil {
		dominance = NoDominance[T]{}
	}
	dominance.Clear()
	check := transitionCheck(s.cfg.debug, m.Problem)

	root := Root(m.Problem, m.UpperBound)
	if nbVars == 0 {
		r.offer(root.Value, nil)
		return Optimal
	}

	columns := make([]*pqueue[T], nbVars+1)
	for i := range columns {
		columns[i] = newPQueue[T]()
	}
	size := func() int {
		n := 0
		for _, c := range columns {
			n += c.len()
		}
		return n
	}
	r.bestBound = func() float64 {
		best := math.Inf(-1)
		for _, c := range columns {
			if p, ok := c.peek(); ok {
				best = max(best, p)
			}
		}
		return best
	}

	seen := newRevisits[T]()
	seen.admit(nodeKey[T]{root.State, root.Depth}, root.Value)
	columns[0].push(root, root.F())

	for size() > 0 {
		if r.shouldStop() {
			return Sat
		}
		r.countIteration()

		for depth := 0; depth < nbVars; depth++ {
			for expanded := 0; expanded < s.cfg.columnWidth; {
				sub, _, ok := columns[depth].pop()
				if !ok {
					break
				}
				if !seen.close(nodeKey[T]{sub.State, sub.Depth}, sub.Value) {
					continue
				}
				if sub.F() <= r.lowerBound() {
					continue
				}
				expanded++
				s.expandInto(r, m, sub, columns[depth+1], dominance, seen, check)
			}
		}
		r.trackFrontier(size())
	}
	return Optimal
}

func (s *ACSSolver[T]) expandInto(r *search[T], m Model[T], sub SubProblem[T], column *pqueue[T], dominance DominanceChecker[T], seen *revisits[T], check func(T, Decision, T) error) {
	nbVars := m.Problem.NbVars()
	var failures int
	var lastErr error
	expand(m, sub, check, func(child SubProblem[T], err error) bool {
		if err != nil {
			failures++
			lastErr = err
		}
		if child.Depth == nbVars {
			if child.Value > r.lowerBound() {
				r.offer(child.Value, child.Path)
			}
			return true
		}
		if child.F() <= r.lowerBound() {
			return true
		}
		if dominance.UpdateDominance(child.State, child.Depth, child.Value) {
			return true
		}
		if seen.admit(nodeKey[T]{child.State, child.Depth}, child.Value) {
			column.push(child, child.F())
		}
		return true
	})
	r.addViolations(failures, lastErr)
}
