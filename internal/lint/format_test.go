package lint

import (
	"testing"

	"github.com/devskills/skillkit/internal/ui"
)

func TestFormatText(t *testing.T) {
	ui.DisableColors()

	result := &Result{
		Checked: 2,
		Findings: []Finding{
			{
				Rule:     RuleFrontmatterMissing,
				Severity: SeverityError,
				Path:     "a.md",
				Message:  "no metadata header found",
			},
			{
				Rule:     RuleUnbalancedFences,
				Severity: SeverityWarning,
				Path:     "b.md",
				Line:     7,
				Message:  "odd number of ``` fences, a code block is unclosed",
			},
		},
	}

	want := "a.md: error frontmatter-missing: no metadata header found\n" +
		"b.md:7: warning unbalanced-fences: odd number of ``` fences, a code block is unclosed\n" +
		"\n" +
		"checked 2 files: 1 error, 1 warning\n"

	if got := FormatText(result); got != want {
		t.Errorf("FormatText() = %q, want %q", got, want)
	}
}

func TestFormatText_Clean(t *testing.T) {
	ui.DisableColors()

	result := &Result{Checked: 1}

	want := "checked 1 file: no problems\n"
	if got := FormatText(result); got != want {
		t.Errorf("FormatText() = %q, want %q", got, want)
	}
}
