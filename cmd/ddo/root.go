package main

import (
	"io"

	"github.com/Masterminds/log-go"
	logcli "github.com/Masterminds/log-go/impl/cli"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var globalUsage = `Usage: ddo command

Solve discrete optimization models with decision diagram based
branch-and-bound, weighted A* and anytime column search.
`

// newLogger returns a logger that prints results on out and diagnostics on
// errOut.
func newLogger(out, errOut io.Writer) *logcli.Logger {
	logger := logcli.NewStandard()
	logger.InfoOut = out
	logger.WarnOut = errOut
	logger.ErrorOut = errOut
	logger.DebugOut = errOut
	return logger
}

func newRootCmd(out, errOut io.Writer, args []string) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:          "ddo",
		Short:        "A decision diagram optimization solver",
		Long:         globalUsage,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	settings.AddFlags(flags)

	flags.ParseErrorsWhitelist.UnknownFlags = true
	if err := flags.Parse(args); err != nil && !errors.Is(err, pflag.ErrHelp) {
		return nil, errors.Wrapf(err, "failed while parsing flags for %s", args)
	}

	if settings.NoColors {
		color.NoColor = true // disable colorized output
	}

	// results go to out, the solver chatter to errOut
	logger := newLogger(out, errOut)
	solverLogger := newLogger(errOut, errOut)
	solverLogger.Level = log.WarnLevel
	if settings.Debug {
		logger.Level = log.DebugLevel
		solverLogger.Level = log.DebugLevel
	}

	cmd.AddCommand(
		newSolveCmd(logger, solverLogger),
		newVersionCmd(logger),
	)
	return cmd, nil
}
