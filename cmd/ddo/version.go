package main

import (
	"bytes"
	"fmt"
	"io"
	"runtime"
	"text/template"

	"github.com/Masterminds/log-go"
	logio "github.com/Masterminds/log-go/io"
	"github.com/spf13/cobra"
)

// set with -ldflags "-X main.version=... -X main.gitCommit=..."
var (
	version   = "v0.1.0-dev"
	gitCommit = ""
)

// BuildInfo describes the binary.
type BuildInfo struct {
	Version   string `json:"version,omitempty"`
	GitCommit string `json:"git_commit,omitempty"`
	GoVersion string `json:"go_version,omitempty"`
}

func buildInfo() BuildInfo {
	return BuildInfo{Version: version, GitCommit: gitCommit, GoVersion: runtime.Version()}
}

const versionDesc = `
Show the version for ddo.

When using the --template flag the following properties are available to use in
the template:

- .Version contains the semantic version of ddo
- .GitCommit is the git commit
- .GoVersion contains the version of Go that ddo was compiled with
`

type versionOptions struct {
	short    bool
	template string
}

func newVersionCmd(logger log.Logger) *cobra.Command {
	o := &versionOptions{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "print the version information",
		Long:  versionDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wInfo := logio.NewWriter(logger, log.InfoLevel)
			return o.run(wInfo)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&o.short, "short", false, "print the version number")
	f.StringVar(&o.template, "template", "", "template for version string format")

	return cmd
}

func (o *versionOptions) run(wr io.Writer) error {
	if o.template != "" {
		tt, err := template.New("_").Parse(o.template)
		if err != nil {
			return err
		}
		buf := &bytes.Buffer{}
		if err := tt.Execute(buf, buildInfo()); err != nil {
			return err
		}
		_, _ = io.Copy(wr, buf)
		return nil
	}
	_, _ = fmt.Fprintln(wr, formatVersion(o.short))
	return nil
}

func formatVersion(short bool) string {
	v := buildInfo()
	if short {
		if len(v.GitCommit) >= 7 {
			return fmt.Sprintf("%s+g%s", v.Version, v.GitCommit[:7])
		}
		return v.Version
	}
	return fmt.Sprintf("%#v", v)
}
