// Package problems holds reference models for the ddo solvers. Each model
// carries the full set of collaborators (problem, relaxation, ranking and a
// fast bound) and can be loaded from a YAML instance file.
//
// Every model uses the natural variable order: Model leaves
// ddo.Model.Variables unset and the domains rely on it.
package problems
