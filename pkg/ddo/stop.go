package ddo

import (
	"time"
)

// StopCondition is polled once per iteration. Returning true ends the search
// with status Sat, or Unknown when no solution was found yet.
type StopCondition func(SearchStatistics) bool

// SolutionCallback receives every improving solution, sorted by variable,
// together with the statistics at that time.
type SolutionCallback func(solution []Decision, stats SearchStatistics)

// NoStop never stops the search.
func NoStop(SearchStatistics) bool { return false }

// TimeLimit stops once d has elapsed.
func TimeLimit(d time.Duration) StopCondition {
	return func(s SearchStatistics) bool { return s.Elapsed >= d }
}

// IterationLimit stops after n iterations.
func IterationLimit(n int) StopCondition {
	return func(s SearchStatistics) bool { return s.Iterations >= n }
}

// GapLimit stops once a solution is known within a relative gap of g.
func GapLimit(g float64) StopCondition {
	return func(s SearchStatistics) bool { return s.HasIncumbent && s.Gap <= g }
}

// AnyOf stops as soon as one of conds does. Nil conditions are ignored.
func AnyOf(conds ...StopCondition) StopCondition {
	return func(s SearchStatistics) bool {
		for _, c := range conds {
			if c != nil && c(s) {
				return true
			}
		}
		return false
	}
}
