package ddo

import (
	"github.com/pkg/errors"
)

// Configuration errors. They are only ever returned by constructors; a
// running search reports its outcome through SearchStatistics.
var (
	ErrMissingProblem        = errors.New("ddo: no problem configured")
	ErrMissingRelaxation     = errors.New("ddo: no relaxation configured")
	ErrMissingRanking        = errors.New("ddo: no state ranking configured")
	ErrMissingUpperBound     = errors.New("ddo: no fast bound configured")
	ErrMissingLowerBound     = errors.New("ddo: no fast lower bound configured")
	ErrInvalidWidth          = errors.New("ddo: max width must be at least 1")
	ErrInvalidWeight         = errors.New("ddo: A* weight must be at least 1")
	ErrInvalidColumnWidth    = errors.New("ddo: column width must be at least 1")
	ErrUnsupportedDebugLevel = errors.New("ddo: unsupported debug level")
	ErrInvalidDirection      = errors.New("ddo: unknown direction")
)

// ErrCompilationCutoff is returned by Diagram.Compile when the stop hook
// interrupted the compilation. The diagram content is meaningless afterwards.
var ErrCompilationCutoff = errors.New("ddo: compilation cut off")

// ErrNonDeterministicTransition reports a transition that yielded two
// different states for the same input under DebugBasic validation.
var ErrNonDeterministicTransition = errors.New("ddo: non deterministic transition")
