// Package report renders search outcomes for humans (table) and tools
// (JSON, YAML).
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/gitrdm/ddo/pkg/ddo"
)

// OutputMode selects the rendering of Format.
type OutputMode int

const (
	JSON OutputMode = iota
	YAML
	Table
)

// ErrUnknownOutput is returned for an output name ParseOutputMode does not
// know.
var ErrUnknownOutput = errors.New("unknown output format")

// ParseOutputMode maps "json", "yaml" and "table" to an OutputMode.
func ParseOutputMode(s string) (OutputMode, error) {
	switch strings.ToLower(s) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "table", "":
		return Table, nil
	}
	return Table, errors.Wrapf(ErrUnknownOutput, "%q", s)
}

func (m OutputMode) String() string {
	switch m {
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	default:
		return "table"
	}
}

// Result is one solved instance.
type Result struct {
	Model    string
	Stats    ddo.SearchStatistics
	Solution []ddo.Decision
}

// summary is the serialized form of a Result. Non finite values have no
// JSON encoding and are left out.
type summary struct {
	Model           string         `json:"model" yaml:"model"`
	RunID           string         `json:"run_id" yaml:"run_id"`
	Driver          string         `json:"driver" yaml:"driver"`
	Status          ddo.Status     `json:"status" yaml:"status"`
	Iterations      int            `json:"iterations" yaml:"iterations"`
	MaxFrontierSize int            `json:"max_frontier_size" yaml:"max_frontier_size"`
	ElapsedMs       int64          `json:"elapsed_ms" yaml:"elapsed_ms"`
	Incumbent       *float64       `json:"incumbent,omitempty" yaml:"incumbent,omitempty"`
	BestBound       *float64       `json:"best_bound,omitempty" yaml:"best_bound,omitempty"`
	Gap             float64        `json:"gap" yaml:"gap"`
	Violations      int            `json:"violations,omitempty" yaml:"violations,omitempty"`
	Solution        []ddo.Decision `json:"solution,omitempty" yaml:"solution,omitempty"`
}

func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

func (r Result) summary() summary {
	s := summary{
		Model:           r.Model,
		RunID:           r.Stats.RunID,
		Driver:          r.Stats.Driver,
		Status:          r.Stats.Status,
		Iterations:      r.Stats.Iterations,
		MaxFrontierSize: r.Stats.MaxFrontierSize,
		ElapsedMs:       r.Stats.ElapsedMs,
		BestBound:       finite(r.Stats.BestBound),
		Gap:             r.Stats.Gap,
		Violations:      r.Stats.Violations,
		Solution:        r.Solution,
	}
	if r.Stats.HasIncumbent {
		s.Incumbent = finite(r.Stats.Incumbent)
	}
	return s
}

// Format renders r in the given mode.
func Format(r Result, mode OutputMode) (string, error) {
	switch mode {
	case JSON:
		o, err := json.Marshal(r.summary())
		if err != nil {
			return "", errors.Wrap(err, "encoding json report")
		}
		return string(o) + "\n", nil
	case YAML:
		o, err := yaml.Marshal(r.summary())
		if err != nil {
			return "", errors.Wrap(err, "encoding yaml report")
		}
		return string(o), nil
	case Table:
		return table(r), nil
	}
	return "", errors.Wrapf(ErrUnknownOutput, "mode %d", int(mode))
}

func table(r Result) string {
	t := uitable.New()
	t.MaxColWidth = 80
	t.Wrap = true
	t.AddRow("MODEL:", r.Model)
	t.AddRow("STATUS:", StatusString(r.Stats.Status))
	t.AddRow("DRIVER:", r.Stats.Driver)
	if r.Stats.HasIncumbent {
		t.AddRow("VALUE:", r.Stats.Incumbent)
	} else {
		t.AddRow("VALUE:", "-")
	}
	t.AddRow("BOUND:", r.Stats.BestBound)
	t.AddRow("GAP:", fmt.Sprintf("%.2f%%", 100*r.Stats.Gap))
	t.AddRow("ITERATIONS:", r.Stats.Iterations)
	t.AddRow("MAX FRONTIER:", r.Stats.MaxFrontierSize)
	t.AddRow("ELAPSED:", r.Stats.Elapsed.Round(time.Microsecond))
	if r.Stats.Violations > 0 {
		t.AddRow("VIOLATIONS:", r.Stats.Violations)
	}
	t.AddRow("RUN:", r.Stats.RunID)
	if len(r.Solution) > 0 {
		parts := make([]string, len(r.Solution))
		for i, d := range r.Solution {
			parts[i] = d.String()
		}
		t.AddRow("SOLUTION:", strings.Join(parts, " "))
	}
	return t.String() + "\n"
}

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

// StatusString colours a status: optimal in green, sat in yellow, unknown
// in red. Set color.NoColor to disable.
func StatusString(s ddo.Status) string {
	switch s {
	case ddo.Optimal:
		return green(s.String())
	case ddo.Sat:
		return yellow(s.String())
	default:
		return red(s.String())
	}
}
