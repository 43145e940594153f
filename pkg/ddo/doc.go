// Package ddo implements a branch-and-bound solver for discrete optimization
// problems driven by bounded-width decision diagrams.
//
// A problem is modelled as a sequential decision process: a state, the
// admissible values of each variable from that state, a transition function
// and a transition cost. The solver repeatedly compiles layered diagrams
// rooted at an open subproblem:
//
//   - a restricted diagram drops the least promising nodes once a layer
//     exceeds the configured width. Every terminal path is a feasible
//     solution, which gives a primal bound (the incumbent).
//   - a relaxed diagram merges the surplus nodes with the caller supplied
//     Relaxation. Its best path is an optimistic dual bound, and the exact
//     nodes sitting just above the merged region (the exact cutset) are pushed
//     back to the frontier for later exploration.
//
// Subproblems are kept in a Frontier ordered by value + bound. A per-depth
// threshold Cache and an optional DominanceChecker prune states that were
// already explored under equal or better conditions. When the frontier runs
// dry the incumbent is proven optimal.
//
// Three drivers share this vocabulary:
//
//   - Solver: the classic restricted/relaxed branch-and-bound loop, sequential
//     or parallel (WithWorkers).
//   - AStarSolver: weighted A* over single subproblems.
//   - ACSSolver: anytime column search, one queue per depth.
//
// All drivers maximize. Minimize runs the same engine on the negated problem
// and reports values with the caller's sign.
//
// Concurrency: a Solver instance is not safe for concurrent use by multiple
// callers, but the parallel mode shares its frontier, cache, dominance table
// and incumbent between worker goroutines. Collaborators (Problem, Relaxation,
// bounds, heuristics) must therefore be safe for concurrent calls when
// WithWorkers(n > 1) is used; pure functions of their arguments always are.
package ddo
