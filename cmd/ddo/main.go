// Command ddo solves the reference models of pkg/problems with the decision
// diagram solvers.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/gitrdm/ddo/pkg/cli"
)

var settings = cli.New()

var magenta = color.New(color.FgMagenta).SprintFunc()

func debug(format string, v ...interface{}) {
	if settings.Debug {
		fmt.Fprintf(os.Stderr, "[debug] %s\n", magenta(fmt.Sprintf(format, v...)))
	}
}

func main() {
	cmd, err := newRootCmd(os.Stdout, os.Stderr, os.Args[1:])
	if err != nil {
		debug("%v", err)
		os.Exit(1)
	}

	if err := cmd.Execute(); err != nil {
		debug("%+v", err)
		os.Exit(1)
	}
}
