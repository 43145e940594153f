package ddo

import (
	"time"

	"github.com/Masterminds/log-go"
	logcli "github.com/Masterminds/log-go/impl/cli"
)

// DefaultWidth is the max layer width used when neither WithFixedWidth nor
// Model.Width is given.
const DefaultWidth = 100

// DebugLevel controls opt-in self checks of the collaborators.
type DebugLevel int

const (
	DebugOff DebugLevel = iota
	// DebugBasic re-applies every transition and reports the ones that are
	// not deterministic.
	DebugBasic
	// DebugExtended is reserved for hash consistency checks and is rejected
	// by every constructor.
	DebugExtended
)

// Direction declares which of Maximize and Minimize a solver serves.
type Direction int

const (
	// BothDirections defers the bound check to the call of Maximize or
	// Minimize.
	BothDirections Direction = iota
	// MaximizeOnly requires Model.UpperBound at construction.
	MaximizeOnly
	// MinimizeOnly requires Model.LowerBound at construction.
	MinimizeOnly
)

func (d Direction) allows(minimize bool) bool {
	switch d {
	case MaximizeOnly:
		return !minimize
	case MinimizeOnly:
		return minimize
	default:
		return true
	}
}

// Option configures a solver.
// Use helpers like WithFixedWidth, WithCutSetType, WithWorkers and
// WithTimeLimit to customize the search.
type Option func(*settings)

type settings struct {
	width       int
	widthSet    bool
	cache       bool
	cutset      CutSetType
	workers     int
	logger      log.Logger
	debug       DebugLevel
	timeLimit   time.Duration
	weight      float64
	columnWidth int
	direction   Direction
}

func defaultSettings() *settings {
	return &settings{
		width:       DefaultWidth,
		cache:       true,
		cutset:      LastExactLayer,
		workers:     1,
		weight:      1,
		columnWidth: 5,
	}
}

func newSettings(opts []Option) *settings {
	cfg := defaultSettings()
	for _, o := range opts {
		if o != nil {
			o(cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = defaultLogger()
	}
	return cfg
}

// defaultLogger only reports warnings and errors, on stderr. Incumbent and
// iteration lines need WithLogger.
func defaultLogger() log.Logger {
	l := logcli.NewStandard()
	l.Level = log.WarnLevel
	return l
}

func (s *settings) validate() error {
	if s.widthSet && s.width < 1 {
		return ErrInvalidWidth
	}
	if s.debug < DebugOff || s.debug >= DebugExtended {
		return ErrUnsupportedDebugLevel
	}
	if s.direction < BothDirections || s.direction > MinimizeOnly {
		return ErrInvalidDirection
	}
	return nil
}

// WithFixedWidth caps every layer to w nodes. It is ignored when the model
// carries its own WidthHeuristic.
func WithFixedWidth(w int) Option {
	return func(s *settings) {
		s.width = w
		s.widthSet = true
	}
}

// WithCache toggles the threshold cache (on by default).
func WithCache(enabled bool) Option {
	return func(s *settings) { s.cache = enabled }
}

// WithCutSetType selects the exact cutset policy (LastExactLayer by default).
func WithCutSetType(c CutSetType) Option {
	return func(s *settings) { s.cutset = c }
}

// WithWorkers runs the branch-and-bound loop on n goroutines sharing one
// frontier and one cache. Values <= 1 select the sequential loop.
func WithWorkers(n int) Option {
	return func(s *settings) { s.workers = n }
}

// WithLogger sets the logger. The default one is limited to warnings.
func WithLogger(l log.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithDebugLevel enables collaborator self checks.
func WithDebugLevel(l DebugLevel) Option {
	return func(s *settings) { s.debug = l }
}

// WithTimeLimit stops the search after d. It is checked between iterations
// and between diagram layers.
func WithTimeLimit(d time.Duration) Option {
	return func(s *settings) { s.timeLimit = d }
}

// WithWeight sets the A* weight w >= 1: nodes are ordered by
// value + w*bound. Only w == 1 proves optimality.
func WithWeight(w float64) Option {
	return func(s *settings) { s.weight = w }
}

// WithColumnWidth sets how many nodes of each column the anytime column
// search expands per iteration.
func WithColumnWidth(k int) Option {
	return func(s *settings) { s.columnWidth = k }
}

// WithDirection restricts the solver to one direction. NewAStar and NewACS
// then fail when the matching bound is missing, and the other direction
// returns Unknown.
func WithDirection(d Direction) Option {
	return func(s *settings) { s.direction = d }
}
