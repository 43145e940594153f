package report

import (
	"fmt"
	"regexp"

	"github.com/kyokomi/emoji/v2"

	"github.com/gitrdm/ddo/pkg/ddo"
)

var emojiCode = regexp.MustCompile(`:[a-zA-Z0-9-_+]+?:`)

// Emojif formats like fmt.Sprintf and expands :emoji: codes, or strips them
// when disabled.
func Emojif(disabled bool, format string, v ...interface{}) string {
	if disabled {
		return fmt.Sprintf(emojiCode.ReplaceAllString(format, ""), v...)
	}
	return emoji.Sprintf(format, v...)
}

// Headline is the one line summary printed after a solve.
func Headline(disabled bool, st ddo.SearchStatistics) string {
	switch {
	case st.Status == ddo.Optimal && st.HasIncumbent:
		return Emojif(disabled, ":trophy: optimal value %v found in %d iterations", st.Incumbent, st.Iterations)
	case st.Status == ddo.Optimal:
		return Emojif(disabled, ":no_entry: no solution exists")
	case st.HasIncumbent:
		return Emojif(disabled, ":hourglass: stopped with value %v, gap %.2f%%", st.Incumbent, 100*st.Gap)
	default:
		return Emojif(disabled, ":hourglass: stopped before finding a solution")
	}
}
