package ddo

import (
	"math"
	"time"
)

// Status is the outcome of a search.
type Status int

const (
	// Unknown: the search was stopped before any solution was found.
	Unknown Status = iota
	// Sat: a solution was found but not proven optimal.
	Sat
	// Optimal: the incumbent is optimal, or the problem has no solution.
	Optimal
)

func (s Status) String() string {
	switch s {
	case Unknown:
		return "UNKNOWN"
	case Sat:
		return "SAT"
	case Optimal:
		return "OPTIMAL"
	default:
		return "INVALID"
	}
}

// MarshalText renders the status by name in JSON and YAML reports.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// SearchStatistics describes a search, either while it runs (stop
// predicates and solution callbacks) or once it returned.
type SearchStatistics struct {
	RunID           string        `json:"run_id" yaml:"run_id"`
	Driver          string        `json:"driver" yaml:"driver"`
	Status          Status        `json:"status" yaml:"status"`
	Iterations      int           `json:"iterations" yaml:"iterations"`
	MaxFrontierSize int           `json:"max_frontier_size" yaml:"max_frontier_size"`
	Elapsed         time.Duration `json:"-" yaml:"-"`
	ElapsedMs       int64         `json:"elapsed_ms" yaml:"elapsed_ms"`
	HasIncumbent    bool          `json:"has_incumbent" yaml:"has_incumbent"`
	Incumbent       float64       `json:"incumbent" yaml:"incumbent"`
	BestBound       float64       `json:"best_bound" yaml:"best_bound"`
	Gap             float64       `json:"gap" yaml:"gap"`
	Violations      int           `json:"violations,omitempty" yaml:"violations,omitempty"`
}

// Gap returns the relative distance between a primal value lb and a dual
// bound ub: |ub - lb| / max(|ub|, |lb|). It is 0 when both are 0 and 1 when
// either is infinite.
func Gap(lb, ub float64) float64 {
	if math.IsInf(lb, 0) || math.IsInf(ub, 0) || math.IsNaN(lb) || math.IsNaN(ub) {
		return 1
	}
	if lb == ub {
		return 0
	}
	den := max(math.Abs(lb), math.Abs(ub))
	if den == 0 {
		return 0
	}
	return math.Min(1, math.Abs(ub-lb)/den)
}

// stats builds a snapshot in the maximization sense.
func stats(driver, runID string, start time.Time, iterations, maxFrontier int, incumbent float64, has bool, bestBound float64) SearchStatistics {
	elapsed := time.Since(start)
	st := SearchStatistics{
		RunID:           runID,
		Driver:          driver,
		Iterations:      iterations,
		MaxFrontierSize: maxFrontier,
		Elapsed:         elapsed,
		ElapsedMs:       elapsed.Milliseconds(),
		HasIncumbent:    has,
		Incumbent:       incumbent,
		BestBound:       bestBound,
	}
	if has {
		st.Gap = Gap(incumbent, max(bestBound, incumbent))
		st.Status = Sat
	} else {
		st.Gap = 1
	}
	return st
}

// negate flips a maximization snapshot into the minimization sense.
func (s SearchStatistics) negate() SearchStatistics {
	s.Incumbent = -s.Incumbent
	s.BestBound = -s.BestBound
	return s
}
