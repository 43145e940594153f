package ddo

import (
	"context"
	"math"
	"sync"
)

// AStarSolver expands one subproblem at a time, best value + weight*bound
// first, and stops as soon as a complete assignment is popped.
//
// Contract:
//   - Model.Problem is required, together with Model.UpperBound for
//     Maximize or Model.LowerBound for Minimize. WithDirection moves the
//     check for the matching bound to NewAStar. The bound must be
//     admissible; with weight 1 the first complete assignment is optimal.
//   - Relaxation and Ranking are not used.
type AStarSolver[T comparable] struct {
	model Model[T]
	cfg   *settings

	mu      sync.Mutex
	value   float64
	best    []Decision
	hasBest bool
}

func validateBoundedModel[T comparable](m Model[T], cfg *settings) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	if m.Problem == nil {
		return ErrMissingProblem
	}
	switch cfg.direction {
	case MaximizeOnly:
		if m.UpperBound == nil {
			return ErrMissingUpperBound
		}
	case MinimizeOnly:
		if m.LowerBound == nil {
			return ErrMissingLowerBound
		}
	default:
		if m.UpperBound == nil && m.LowerBound == nil {
			return ErrMissingUpperBound
		}
	}
	return nil
}

// NewAStar validates the model and options. WithWeight is honoured.
func NewAStar[T comparable](m Model[T], opts ...Option) (*AStarSolver[T], error) {
	cfg := newSettings(opts)
	if err := validateBoundedModel(m, cfg); err != nil {
		return nil, err
	}
	if cfg.weight < 1 || math.IsInf(cfg.weight, 0) || math.IsNaN(cfg.weight) {
		return nil, ErrInvalidWeight
	}
	return &AStarSolver[T]{model: m, cfg: cfg}, nil
}

// Maximize runs weighted A* on the model.
func (s *AStarSolver[T]) Maximize(ctx context.Context, stop StopCondition, onSolution SolutionCallback) SearchStatistics {
	return s.solve(ctx, s.model, false, stop, onSolution)
}

// Minimize runs weighted A* on the negated model.
func (s *AStarSolver[T]) Minimize(ctx context.Context, stop StopCondition, onSolution SolutionCallback) SearchStatistics {
	return s.solve(ctx, s.model.negated(), true, stop, onSolution)
}

func (s *AStarSolver[T]) BestValue() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.hasBest
}

func (s *AStarSolver[T]) BestSolution() ([]Decision, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasBest {
		return nil, false
	}
	return append([]Decision(nil), s.best...), true
}

func (s *AStarSolver[T]) solve(ctx context.Context, m Model[T], minimize bool, stop StopCondition, onSolution SolutionCallback) SearchStatistics {
	nbVars := m.Problem.NbVars()
	r := newSearch[T](ctx, "astar", s.cfg, nbVars, minimize, stop, onSolution)

	var status Status
	if !s.cfg.direction.allows(minimize) || m.UpperBound == nil {
		r.logger.Errorf("ddo: astar needs a fast bound in this direction (minimize=%v)", minimize)
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

func (s *AStarSolver[T]) run(r *search[T], m Model[T]) Status {
	nbVars := m.Problem.NbVars()
	weight := s.cfg.weight
	dominance := m.Dominance
	if dominance == nil {
		dominance = NoDominance[T]{}
	}
	dominance.Clear()
	check := transitionCheck(s.cfg.debug, m.Problem)

	open := newPQueue[T]()
	seen := newRevisits[T]()
	if weight == 1 {
		r.bestBound = func() float64 {
			if p, ok := open.peek(); ok {
				return p
			}
			return math.Inf(-1)
		}
	}

	root := Root(m.Problem, m.UpperBound)
	seen.admit(nodeKey[T]{root.State, root.Depth}, root.Value)
	open.push(root, root.Value+weight*root.Bound)

	for {
		if r.shouldStop() {
			return Sat
		}
		sub, _, ok := open.pop()
		if !ok {
			return Optimal
		}
		r.countIteration()
		if !seen.close(nodeKey[T]{sub.State, sub.Depth}, sub.Value) {
			continue
		}
		if sub.Depth == nbVars {
			r.offer(sub.Value, sub.Path)
			if weight == 1 {
				return Optimal
			}
			return Sat
		}

		var failures int
		var lastErr error
		expand(m, sub, check, func(child SubProblem[T], err error) bool {
			if err != nil {
				failures++
				lastErr = err
			}
			if math.IsInf(child.F(), -1) {
				return true
			}
			if dominance.UpdateDominance(child.State, child.Depth, child.Value) {
				return true
			}
			if seen.admit(nodeKey[T]{child.State, child.Depth}, child.Value) {
				open.push(child, child.Value+weight*child.Bound)
			}
			return true
		})
		r.addViolations(failures, lastErr)
		r.trackFrontier(open.len())
	}
}
