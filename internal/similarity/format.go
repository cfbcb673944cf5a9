package similarity

import (
	"fmt"
	"io"

	"github.com/devskills/skillkit/internal/ui"
)

// FormatDuplicatesTable writes duplicate pairs as an aligned table with
// colored scores.
func FormatDuplicatesTable(w io.Writer, dupes []Duplicate) error {
	if len(dupes) == 0 {
		_, err := fmt.Fprintln(w, "No duplicate skills found.")
		return err
	}

	const skillColWidth = 28

	if _, err := fmt.Fprintf(w, "%s %s %s %s\n",
		ui.Header(fmt.Sprintf("%-*s", skillColWidth, "SKILL 1")),
		ui.Header(fmt.Sprintf("%-*s", skillColWidth, "SKILL 2")),
		ui.Header(fmt.Sprintf("%-8s", "NAME")),
		ui.Header(fmt.Sprintf("%-8s", "CONTENT"))); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-*s %-*s %-8s %-8s\n",
		skillColWidth, "-------", skillColWidth, "-------", "----", "-------"); err != nil {
		return err
	}

	for _, d := range dupes {
		left := formatSkillWithSource(d.Skill1.Name, string(d.Skill1.Source), skillColWidth)
		right := formatSkillWithSource(d.Skill2.Name, string(d.Skill2.Source), skillColWidth)

		if _, err := fmt.Fprintf(w, "%-*s %-*s %s %s\n",
			skillColWidth, left, skillColWidth, right,
			colorScore(d.NameScore), colorScore(d.ContentScore)); err != nil {
			return err
		}
	}
	return nil
}

// formatSkillWithSource formats "name (source)", truncated to maxWidth.
func formatSkillWithSource(name, source string, maxWidth int) string {
	if source == "" {
		return truncateString(name, maxWidth)
	}
	full := fmt.Sprintf("%s (%s)", name, source)
	if len(full) <= maxWidth {
		return full
	}
	sourcePart := fmt.Sprintf(" (%s)", source)
	availableForName := maxWidth - len(sourcePart)
	if availableForName < 4 {
		return truncateString(full, maxWidth)
	}
	return truncateString(name, availableForName) + sourcePart
}

// colorScore renders a 0.0-1.0 score as a colored percentage column.
func colorScore(score float64) string {
	formatted := fmt.Sprintf("%-8s", fmt.Sprintf("%.0f%%", score*100))
	switch {
	case score >= 0.8:
		return ui.Error(formatted)
	case score >= 0.5:
		return ui.Warning(formatted)
	default:
		return ui.Dim(formatted)
	}
}

// truncateString truncates a string to the given width, adding "..." if needed.
func truncateString(s string, width int) string {
	if width <= 3 {
		return s
	}
	if len(s) <= width {
		return s
	}
	return s[:width-3] + "..."
}
