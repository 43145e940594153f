package main

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitrdm/ddo/pkg/cli"
)

const testdata = "../../pkg/problems/testdata/"

func executeCommandC(cmd string) (*cobra.Command, string, error) {
	args, err := shellwords.Parse(cmd)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	root, err := newRootCmd(buf, new(bytes.Buffer), args)
	if err != nil {
		return nil, "", err
	}

	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	c, err := root.ExecuteC()
	return c, buf.String(), err
}

func resetEnv() func() {
	origEnv := os.Environ()
	return func() {
		os.Clearenv()
		for _, pair := range origEnv {
			kv := strings.SplitN(pair, "=", 2)
			os.Setenv(kv[0], kv[1])
		}
		settings = cli.New()
		color.NoColor = true
	}
}

// cmdTestCase describes a command line and what its output must contain.
type cmdTestCase struct {
	name      string
	cmd       string
	contains  []string
	wantError bool
}

func runTestCmd(t *testing.T, tests []cmdTestCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer resetEnv()()

			t.Logf("running cmd: %s", tt.cmd)
			_, out, err := executeCommandC(tt.cmd)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestSolveCmd(t *testing.T) {
	color.NoColor = true
	tests := []cmdTestCase{
		{
			name:     "knapsack table",
			cmd:      "solve knapsack --no-emoji -f " + testdata + "knapsack.yaml",
			contains: []string{"OPTIMAL", "90", "x1=1", "optimal value 90"},
		},
		{
			name:     "knapsack with every bnb option",
			cmd:      "solve knapsack -f " + testdata + "knapsack.yaml --width 1 --cutset frontier --workers 2 --no-cache --check -o yaml",
			contains: []string{"status: OPTIMAL", "incumbent: 90"},
		},
		{
			name:     "tsp with astar",
			cmd:      "solve tsp -f " + testdata + "tsp4.yaml --solver astar -o json",
			contains: []string{`"status":"OPTIMAL"`, `"incumbent":-18`},
		},
		{
			name:     "tsp with acs",
			cmd:      "solve tsp -f " + testdata + "tsp4.yaml --solver acs --column-width 2 -o json",
			contains: []string{`"incumbent":-18`},
		},
		{
			name:     "golomb from file",
			cmd:      "solve golomb -f " + testdata + "golomb5.yaml -o json",
			contains: []string{`"incumbent":-11`},
		},
		{
			name:     "golomb from flags",
			cmd:      "solve golomb --marks 4 -w 2 -o json",
			contains: []string{`"incumbent":-6`},
		},
		{
			name:      "unknown model",
			cmd:       "solve sudoku",
			wantError: true,
		},
		{
			name:      "missing file",
			cmd:       "solve knapsack -f " + testdata + "nope.yaml",
			wantError: true,
		},
		{
			name:      "unknown solver",
			cmd:       "solve knapsack -f " + testdata + "knapsack.yaml --solver dfs",
			wantError: true,
		},
		{
			name:      "unknown cutset",
			cmd:       "solve knapsack -f " + testdata + "knapsack.yaml --cutset all",
			wantError: true,
		},
		{
			name:      "invalid width",
			cmd:       "solve knapsack -f " + testdata + "knapsack.yaml --width 0",
			wantError: true,
		},
		{
			name:      "unknown output",
			cmd:       "solve knapsack -f " + testdata + "knapsack.yaml -o xml",
			wantError: true,
		},
	}
	runTestCmd(t, tests)
}

func TestSolveCmdJSONIsValid(t *testing.T) {
	defer resetEnv()()
	_, out, err := executeCommandC("solve knapsack -o json -f " + testdata + "knapsack.yaml")
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "knapsack", got["model"])
	assert.Equal(t, "bnb", got["driver"])
}

func TestRootCmdNoColor(t *testing.T) {
	defer resetEnv()()
	color.NoColor = false
	_, err := newRootCmd(new(bytes.Buffer), new(bytes.Buffer), []string{"--no-color", "version"})
	require.NoError(t, err)
	assert.True(t, settings.NoColors)
	assert.True(t, color.NoColor)
}

func TestVersionCmd(t *testing.T) {
	tests := []cmdTestCase{
		{
			name:     "default",
			cmd:      "version",
			contains: []string{"BuildInfo", version},
		},
		{
			name:     "short",
			cmd:      "version --short",
			contains: []string{version},
		},
		{
			name:     "template",
			cmd:      "version --template='Version: {{.Version}}'",
			contains: []string{"Version: " + version},
		},
	}
	runTestCmd(t, tests)
}
