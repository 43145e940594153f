package ddo

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/gitrdm/ddo/internal/parallel"
)

// Solver is the restricted/relaxed decision diagram branch-and-bound driver.
//
// Contract:
//   - Model.Problem, Model.Relaxation and Model.Ranking are required.
//   - Model.UpperBound (Maximize) or Model.LowerBound (Minimize) is optional
//     and only tightens pruning.
//   - Configuration errors are reported by NewSolver; a search always
//     returns SearchStatistics with an explicit status.
type Solver[T comparable] struct {
	model Model[T]
	cfg   *settings

	mu        sync.Mutex
	bestValue float64
	best      []Decision
	hasBest   bool
}

// NewSolver validates the model and options.
func NewSolver[T comparable](m Model[T], opts ...Option) (*Solver[T], error) {
	cfg := newSettings(opts)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	switch {
	case m.Problem == nil:
		return nil, ErrMissingProblem
	case m.Relaxation == nil:
		return nil, ErrMissingRelaxation
	case m.Ranking == nil:
		return nil, ErrMissingRanking
	}
	return &Solver[T]{model: m, cfg: cfg}, nil
}

// Maximize searches for the assignment of highest value.
//
// stop is polled once per iteration (nil never stops) and onSolution is
// called for every improving solution (nil is allowed). Cancelling ctx stops
// the search at the next iteration or layer boundary.
func (s *Solver[T]) Maximize(ctx context.Context, stop StopCondition, onSolution SolutionCallback) SearchStatistics {
	return s.solve(ctx, s.model, false, stop, onSolution)
}

// Minimize searches for the assignment of lowest value. Values given to
// stop, onSolution and returned in the statistics are not negated.
func (s *Solver[T]) Minimize(ctx context.Context, stop StopCondition, onSolution SolutionCallback) SearchStatistics {
	return s.solve(ctx, s.model.negated(), true, stop, onSolution)
}

// BestValue returns the value of the best solution of the last search.
func (s *Solver[T]) BestValue() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bestValue, s.hasBest
}

// BestSolution returns the best solution of the last search, sorted by
// variable index.
func (s *Solver[T]) BestSolution() ([]Decision, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasBest {
		return nil, false
	}
	return append([]Decision(nil), s.best...), true
}

// bnb holds what one branch-and-bound run shares between its workers.
type bnb[T comparable] struct {
	*search[T]
	model     Model[T]
	frontier  Frontier[T]
	cache     Cache[T]
	dominance DominanceChecker[T]
	check     func(T, Decision, T) error

	widthOnce sync.Once
}

func (s *Solver[T]) solve(ctx context.Context, m Model[T], minimize bool, stop StopCondition, onSolution SolutionCallback) SearchStatistics {
	nbVars := m.Problem.NbVars()
	driver := "bnb"
	if s.cfg.workers > 1 {
		driver = "bnb-parallel"
	}

	r := &bnb[T]{
		search:   newSearch[T](ctx, driver, s.cfg, nbVars, minimize, stop, onSolution),
		model:    m,
		frontier: NewSimpleFrontier[T](s.cfg.cutset),
		check:    transitionCheck(s.cfg.debug, m.Problem),
	}
	r.bestBound = r.frontier.PeekBestBound
	if s.cfg.cache {
		r.cache = &SimpleCache[T]{}
	} else {
		r.cache = NoCache[T]{}
	}
	r.cache.Initialize(nbVars)
	r.dominance = m.Dominance
	if r.dominance == nil {
		r.dominance = NoDominance[T]{}
	}
	r.dominance.Clear()

	if !s.cfg.direction.allows(minimize) {
		r.logger.Errorf("ddo: %s solver was built for the other direction (minimize=%v)", driver, minimize)
		return s.record(r.search, r.finish(Unknown))
	}

	r.logger.Debugf("ddo: %s run %s started with %d variables, cutset %s", driver, r.runID, nbVars, s.cfg.cutset)

	r.frontier.Push(Root(m.Problem, m.UpperBound))
	var status Status
	if s.cfg.workers > 1 {
		status = r.runParallel(s.cfg.workers)
	} else {
		status = r.runSequential()
	}
	return s.record(r.search, r.finish(status))
}

// record keeps the outcome of r for BestValue and BestSolution.
func (s *Solver[T]) record(r *search[T], st SearchStatistics) SearchStatistics {
	v, sol, ok := r.result()
	s.mu.Lock()
	s.bestValue, s.best, s.hasBest = v, sol, ok
	s.mu.Unlock()
	return st
}

func (r *bnb[T]) maxWidth(sub SubProblem[T]) int {
	if r.model.Width == nil {
		return r.cfg.width
	}
	w := r.model.Width.MaxWidth(sub)
	if w < 1 {
		r.widthOnce.Do(func() {
			r.logger.Warnf("ddo: width heuristic returned %d, using 1", w)
		})
		w = 1
	}
	return w
}

func (r *bnb[T]) runSequential() Status {
	restricted, relaxed := NewDiagram[T](), NewDiagram[T]()
	for !r.frontier.IsEmpty() {
		if r.shouldStop() {
			return Sat
		}
		sub, ok := r.frontier.Pop()
		if !ok {
			break
		}
		it := r.countIteration()
		if sub.F() <= r.lowerBound() {
			r.frontier.Clear()
			return Optimal
		}
		if !r.cache.MustExplore(sub.State, sub.Depth, sub.Value) {
			continue
		}
		if !r.process(sub, restricted, relaxed) {
			r.frontier.Push(sub)
			return Sat
		}
		if d := r.frontier.MinDepth(); d > 0 {
			r.cache.Clear(d)
		}
		r.trackFrontier(r.frontier.Size())
		r.logger.Debugf("ddo: iteration %d depth %d frontier %d", it, sub.Depth, r.frontier.Size())
	}
	return Optimal
}

func (r *bnb[T]) runParallel(workers int) Status {
	barrier := parallel.NewBarrier()
	pool := parallel.NewWorkerPool(workers)
	defer pool.Shutdown()

	var (
		wg      sync.WaitGroup
		stopped atomic.Bool
	)
	for i := 0; i < pool.Size(); i++ {
		wg.Add(1)
		err := pool.Submit(r.ctx, func() {
			defer wg.Done()
			if !r.worker(barrier) {
				stopped.Store(true)
			}
		})
		if err != nil {
			wg.Done()
			stopped.Store(true)
			barrier.Stop()
		}
	}
	wg.Wait()
	if stopped.Load() {
		return Sat
	}
	return Optimal
}

// worker repeats the driver loop on the shared frontier. It returns false
// when it stopped the search.
func (r *bnb[T]) worker(barrier *parallel.Barrier) bool {
	restricted, relaxed := NewDiagram[T](), NewDiagram[T]()
	for {
		if r.shouldStop() {
			barrier.Stop()
			return false
		}
		var sub SubProblem[T]
		if !barrier.Acquire(func() bool {
			var ok bool
			sub, ok = r.frontier.Pop()
			return ok
		}) {
			return true
		}
		r.countIteration()
		// other workers may push better nodes concurrently, so a dead node
		// is dropped alone rather than clearing the frontier
		if sub.F() > r.lowerBound() && r.cache.MustExplore(sub.State, sub.Depth, sub.Value) {
			if !r.process(sub, restricted, relaxed) {
				r.frontier.Push(sub)
				barrier.Release()
				barrier.Stop()
				return false
			}
		}
		r.trackFrontier(r.frontier.Size())
		barrier.Release()
	}
}

// process compiles the restricted then the relaxed diagram of sub. It
// returns false when a compilation was cut off or failed.
func (r *bnb[T]) process(sub SubProblem[T], restricted, relaxed *Diagram[T]) bool {
	in := CompilationInput[T]{
		Type:       Restricted,
		Problem:    r.model.Problem,
		Relaxation: r.model.Relaxation,
		Ranking:    r.model.Ranking,
		Variables:  r.model.Variables,
		UpperBound: r.model.UpperBound,
		Dominance:  r.dominance,
		Cache:      r.cache,
		CutSetType: r.frontier.CutSetType(),
		Residual:   sub,
		MaxWidth:   r.maxWidth(sub),
		BestLB:     r.lowerBound(),
		Stop:       r.timedOut,
		Check:      r.check,
	}

	if err := restricted.Compile(in); err != nil {
		return r.failed(err)
	}
	r.addViolations(restricted.Violations())
	if v, ok := restricted.BestValue(); ok {
		sol, _ := restricted.BestSolution()
		r.offer(v, sol)
	}
	if restricted.IsExact() {
		return true
	}

	in.Type = Relaxed
	in.BestLB = r.lowerBound()
	if err := relaxed.Compile(in); err != nil {
		return r.failed(err)
	}
	r.addViolations(relaxed.Violations())
	if v, ok := relaxed.BestExactValue(); ok {
		sol, _ := relaxed.BestExactSolution()
		r.offer(v, sol)
	}
	if relaxed.IsExact() {
		return true
	}

	lb := r.lowerBound()
	for _, c := range relaxed.Cutset() {
		if c.F() > lb {
			r.frontier.Push(c)
		}
	}
	return true
}

func (r *bnb[T]) failed(err error) bool {
	if errors.Is(err, ErrCompilationCutoff) {
		return false
	}
	traceFailure(r.span, err)
	r.logger.Errorf("ddo: compilation failed: %v", err)
	return false
}
