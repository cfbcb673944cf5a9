package lint

import (
	"fmt"
	"strings"

	"github.com/devskills/skillkit/internal/ui"
)

// FormatText renders findings compiler-style, one per line, followed by
// the run summary.
func FormatText(result *Result) string {
	var b strings.Builder

	for _, f := range result.Findings {
		loc := f.Path
		if f.Line > 0 {
			loc = fmt.Sprintf("%s:%d", f.Path, f.Line)
		}
		fmt.Fprintf(&b, "%s: %s %s: %s\n", loc, severityLabel(f.Severity), ui.Dim(f.Rule), f.Message)
	}

	if len(result.Findings) > 0 {
		b.WriteString("\n")
	}
	b.WriteString(result.Summary())
	b.WriteString("\n")

	return b.String()
}

func severityLabel(s Severity) string {
	switch s {
	case SeverityError:
		return ui.Error(string(s))
	case SeverityWarning:
		return ui.Warning(string(s))
	default:
		return ui.Info(string(s))
	}
}
