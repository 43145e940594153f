// Package cli holds the settings shared by every ddo command.
package cli

import (
	"os"
	"strconv"

	"github.com/spf13/pflag"
)

// EnvSettings are read from the environment and overridden by flags.
type EnvSettings struct {
	Debug    bool
	NoColors bool
	NoEmojis bool
}

// New reads the DDO_* environment variables.
func New() *EnvSettings {
	env := &EnvSettings{}
	env.Debug = envBool("DDO_DEBUG")
	env.NoColors = envBool("DDO_NO_COLOR")
	env.NoEmojis = envBool("DDO_NO_EMOJI")
	return env
}

func envBool(name string) bool {
	v, _ := strconv.ParseBool(os.Getenv(name))
	return v
}

// AddFlags binds the settings to fs.
func (s *EnvSettings) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&s.Debug, "debug", s.Debug, "enable verbose output")
	fs.BoolVar(&s.NoColors, "no-color", s.NoColors, "disable colorized output")
	fs.BoolVar(&s.NoEmojis, "no-emoji", s.NoEmojis, "disable emojis in the output")
}

// EnvVars returns the settings as environment variables.
func (s *EnvSettings) EnvVars() map[string]string {
	return map[string]string{
		"DDO_DEBUG":    strconv.FormatBool(s.Debug),
		"DDO_NO_COLOR": strconv.FormatBool(s.NoColors),
		"DDO_NO_EMOJI": strconv.FormatBool(s.NoEmojis),
	}
}
