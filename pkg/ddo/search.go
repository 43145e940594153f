package ddo

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/Masterminds/log-go"
	"go.opentelemetry.io/otel/trace"
)

// search is the state of one run, shared by every driver and by the workers
// of the parallel driver. Values are in the maximization sense; minimize
// only affects what the caller sees.
type search[T comparable] struct {
	ctx        context.Context
	span       trace.Span
	runID      string
	driver     string
	start      time.Time
	cfg        *settings
	logger     log.Logger
	stop       StopCondition
	onSolution SolutionCallback
	minimize   bool
	nbVars     int

	// bestBound reports the dual bound of the open nodes.
	bestBound func() float64

	// mu guards the incumbent and the counters.
	mu          sync.Mutex
	incumbent   float64
	solution    []Decision
	has         bool
	iterations  int
	maxFrontier int
	violations  int

	// cbMu serializes solution callbacks so they observe increasing values.
	cbMu sync.Mutex
}

func newSearch[T comparable](ctx context.Context, driver string, cfg *settings, nbVars int, minimize bool, stop StopCondition, onSolution SolutionCallback) *search[T] {
	ctx, span, runID := startRun(ctx, driver, nbVars, minimize)
	return &search[T]{
		ctx:        ctx,
		span:       span,
		runID:      runID,
		driver:     driver,
		start:      time.Now(),
		cfg:        cfg,
		logger:     cfg.logger,
		stop:       stop,
		onSolution: onSolution,
		minimize:   minimize,
		nbVars:     nbVars,
		incumbent:  math.Inf(-1),
		bestBound:  func() float64 { return math.Inf(1) },
	}
}

func (r *search[T]) lowerBound() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.incumbent
}

// snapshot returns the statistics as the caller sees them.
func (r *search[T]) snapshot() SearchStatistics {
	bound := r.bestBound()
	r.mu.Lock()
	st := stats(r.driver, r.runID, r.start, r.iterations, r.maxFrontier, r.incumbent, r.has, max(bound, r.incumbent))
	st.Violations = r.violations
	r.mu.Unlock()
	if r.minimize {
		st = st.negate()
	}
	return st
}

// timedOut is the part of the stop test that may also interrupt a
// compilation between two layers.
func (r *search[T]) timedOut() bool {
	if r.ctx.Err() != nil {
		return true
	}
	return r.cfg.timeLimit > 0 && time.Since(r.start) >= r.cfg.timeLimit
}

func (r *search[T]) shouldStop() bool {
	if r.timedOut() {
		return true
	}
	return r.stop != nil && r.stop(r.snapshot())
}

func (r *search[T]) countIteration() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.iterations++
	return r.iterations
}

func (r *search[T]) trackFrontier(size int) {
	r.mu.Lock()
	r.maxFrontier = max(r.maxFrontier, size)
	r.mu.Unlock()
}

func (r *search[T]) addViolations(n int, err error) {
	if n == 0 {
		return
	}
	r.mu.Lock()
	r.violations += n
	r.mu.Unlock()
	r.logger.Warnf("ddo: %d transition check failures, last: %v", n, err)
}

// offer records solution if it improves the incumbent, then notifies the
// caller.
func (r *search[T]) offer(value float64, solution []Decision) bool {
	r.cbMu.Lock()
	defer r.cbMu.Unlock()

	r.mu.Lock()
	// double-check under the lock: another worker may have improved it
	if r.has && value <= r.incumbent {
		r.mu.Unlock()
		return false
	}
	r.incumbent = value
	r.solution = solution
	r.has = true
	iteration := r.iterations
	r.mu.Unlock()

	shown := value
	if r.minimize {
		shown = -value
	}
	traceIncumbent(r.span, shown, iteration)
	r.logger.Infof("ddo: new incumbent %v at iteration %d", shown, iteration)
	if r.onSolution != nil {
		r.onSolution(sortedSolution(solution), r.snapshot())
	}
	return true
}

// finish builds the final statistics and closes the run span.
func (r *search[T]) finish(status Status) SearchStatistics {
	st := r.snapshot()
	switch status {
	case Optimal:
		st.Status = Optimal
		st.Gap = 0
		st.BestBound = st.Incumbent
	default:
		if st.HasIncumbent {
			st.Status = Sat
		} else {
			st.Status = Unknown
		}
	}
	endRun(r.span, st)
	r.logger.Debugf("ddo: %s run %s ended: %s after %d iterations in %s", r.driver, r.runID, st.Status, st.Iterations, st.Elapsed)
	return st
}

// result returns the incumbent in the caller's sense.
func (r *search[T]) result() (float64, []Decision, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.has {
		return 0, nil, false
	}
	v := r.incumbent
	if r.minimize {
		v = -v
	}
	return v, sortedSolution(r.solution), true
}
