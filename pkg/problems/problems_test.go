package problems

import (
	"context"
	"io"
	"math"
	"os"
	"testing"

	"github.com/Masterminds/log-go"
	logcli "github.com/Masterminds/log-go/impl/cli"
	"github.com/stretchr/testify/require"

	"github.com/gitrdm/ddo/pkg/ddo"
)

// shouldRunHeavy returns true when heavy/long-running tests should run even
// if the Go test suite is invoked in short mode. Set DDO_FORCE_HEAVY=1
// (or "true") to override short-mode skips.
func shouldRunHeavy() bool {
	v := os.Getenv("DDO_FORCE_HEAVY")
	return v == "1" || v == "true" || v == "TRUE" || v == "True"
}

func quietLogger() log.Logger {
	logger := logcli.NewStandard()
	logger.InfoOut = io.Discard
	logger.WarnOut = io.Discard
	logger.ErrorOut = io.Discard
	logger.DebugOut = io.Discard
	return logger
}

func maximize[T comparable](t *testing.T, m ddo.Model[T], opts ...ddo.Option) (ddo.SearchStatistics, []ddo.Decision) {
	t.Helper()
	s, err := ddo.NewSolver(m, append([]ddo.Option{ddo.WithLogger(quietLogger())}, opts...)...)
	require.NoError(t, err)
	st := s.Maximize(context.Background(), nil, nil)
	sol, _ := s.BestSolution()
	return st, sol
}

func compile[T comparable](t *testing.T, m ddo.Model[T], ctype ddo.CompilationType, width int) *ddo.Diagram[T] {
	t.Helper()
	d := ddo.NewDiagram[T]()
	require.NoError(t, d.Compile(ddo.CompilationInput[T]{
		Type:       ctype,
		Problem:    m.Problem,
		Relaxation: m.Relaxation,
		Ranking:    m.Ranking,
		UpperBound: m.UpperBound,
		Residual:   ddo.Root(m.Problem, m.UpperBound),
		MaxWidth:   width,
		BestLB:     math.Inf(-1),
	}))
	return d
}
