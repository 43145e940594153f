package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/Masterminds/log-go"
	logio "github.com/Masterminds/log-go/io"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/gitrdm/ddo/pkg/ddo"
	"github.com/gitrdm/ddo/pkg/problems"
	"github.com/gitrdm/ddo/pkg/report"
)

const solveDesc = `
Solve a reference model instance read from a YAML file.

Models:
  knapsack   capacity + items with weight and profit
  tsp        distance matrix, tours start and end at city 0
  golomb     number of marks (the file may be omitted with --marks)

Solvers:
  bnb        restricted/relaxed decision diagram branch-and-bound (default)
  astar      weighted A* (--weight)
  acs        anytime column search (--column-width)
`

type solveOptions struct {
	file        string
	solver      string
	width       int
	cutset      string
	workers     int
	timeout     time.Duration
	noCache     bool
	check       bool
	weight      float64
	columnWidth int
	marks       int
	output      string
}

func newSolveCmd(logger, solverLogger log.Logger) *cobra.Command {
	o := &solveOptions{}

	cmd := &cobra.Command{
		Use:       "solve MODEL",
		Short:     "solve a model instance",
		Long:      solveDesc,
		Args:      cobra.ExactValidArgs(1),
		ValidArgs: []string{"knapsack", "tsp", "golomb"},
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := report.ParseOutputMode(o.output)
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()

			res, err := o.run(ctx, args[0], solverLogger)
			if err != nil {
				return err
			}
			out, err := report.Format(res, mode)
			if err != nil {
				return err
			}
			wInfo := logio.NewWriter(logger, log.InfoLevel)
			_, _ = fmt.Fprint(wInfo, out)
			if mode == report.Table {
				_, _ = fmt.Fprintln(wInfo, report.Headline(settings.NoEmojis, res.Stats))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.file, "file", "f", "", "instance file (YAML)")
	f.StringVarP(&o.solver, "solver", "s", "bnb", "search driver: bnb, astar or acs")
	f.IntVarP(&o.width, "width", "w", ddo.DefaultWidth, "maximum width of the decision diagram layers")
	f.StringVar(&o.cutset, "cutset", "lel", "exact cutset: lel (last exact layer) or frontier")
	f.IntVar(&o.workers, "workers", 1, "number of branch-and-bound workers")
	f.DurationVarP(&o.timeout, "timeout", "t", 0, "stop the search after this duration (0 means no limit)")
	f.BoolVar(&o.noCache, "no-cache", false, "disable the threshold cache")
	f.BoolVar(&o.check, "check", false, "verify that transitions are deterministic")
	f.Float64Var(&o.weight, "weight", 1, "A* weight (>= 1)")
	f.IntVar(&o.columnWidth, "column-width", 5, "nodes expanded per column and iteration by acs")
	f.IntVar(&o.marks, "marks", 0, "number of marks of a golomb instance given without a file")
	f.StringVarP(&o.output, "output", "o", "table", "prints the output in the specified format. Allowed values: table, json, yaml")

	return cmd
}

func (o *solveOptions) options(logger log.Logger) ([]ddo.Option, error) {
	var cutset ddo.CutSetType
	switch o.cutset {
	case "lel", "":
		cutset = ddo.LastExactLayer
	case "frontier":
		cutset = ddo.FrontierCutSet
	default:
		return nil, errors.Errorf("unknown cutset %q, expected lel or frontier", o.cutset)
	}
	opts := []ddo.Option{
		ddo.WithLogger(logger),
		ddo.WithFixedWidth(o.width),
		ddo.WithCutSetType(cutset),
		ddo.WithWorkers(o.workers),
		ddo.WithCache(!o.noCache),
		ddo.WithTimeLimit(o.timeout),
		ddo.WithWeight(o.weight),
		ddo.WithColumnWidth(o.columnWidth),
		ddo.WithDirection(ddo.MaximizeOnly),
	}
	if o.check {
		opts = append(opts, ddo.WithDebugLevel(ddo.DebugBasic))
	}
	return opts, nil
}

func (o *solveOptions) run(ctx context.Context, model string, logger log.Logger) (report.Result, error) {
	opts, err := o.options(logger)
	if err != nil {
		return report.Result{}, err
	}
	res := report.Result{Model: model}

	switch model {
	case "knapsack":
		k, err := problems.LoadKnapsack(o.file)
		if err != nil {
			return res, err
		}
		res.Stats, res.Solution, err = solve(ctx, o.solver, k.Model(), opts)
		return res, err
	case "tsp":
		t, err := problems.LoadTSP(o.file)
		if err != nil {
			return res, err
		}
		res.Stats, res.Solution, err = solve(ctx, o.solver, t.Model(), opts)
		return res, err
	case "golomb":
		g := &problems.Golomb{Marks: o.marks}
		if o.file != "" {
			if g, err = problems.LoadGolomb(o.file); err != nil {
				return res, err
			}
		} else if err := g.Validate(); err != nil {
			return res, err
		}
		res.Stats, res.Solution, err = solve(ctx, o.solver, g.Model(), opts)
		return res, err
	}
	return res, errors.Errorf("unknown model %q", model)
}

// maximizer is what the three search drivers have in common.
type maximizer interface {
	Maximize(ctx context.Context, stop ddo.StopCondition, onSolution ddo.SolutionCallback) ddo.SearchStatistics
	BestSolution() ([]ddo.Decision, bool)
}

func solve[T comparable](ctx context.Context, driver string, m ddo.Model[T], opts []ddo.Option) (ddo.SearchStatistics, []ddo.Decision, error) {
	var (
		s   maximizer
		err error
	)
	switch driver {
	case "bnb", "":
		s, err = ddo.NewSolver(m, opts...)
	case "astar":
		s, err = ddo.NewAStar(m, opts...)
	case "acs":
		s, err = ddo.NewACS(m, opts...)
	default:
		err = errors.Errorf("unknown solver %q, expected bnb, astar or acs", driver)
	}
	if err != nil {
		return ddo.SearchStatistics{}, nil, err
	}
	st := s.Maximize(ctx, nil, nil)
	sol, _ := s.BestSolution()
	return st, sol, nil
}
