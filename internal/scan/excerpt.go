package scan

import (
	"fmt"
	"strings"
)

// Excerpt renders numbered source lines around a hit for report
// context. hit is 1-based; around counts extra lines on each side. The
// hit line carries a ">" marker.
func Excerpt(lines []string, hit, around int) string {
	if hit < 1 || hit > len(lines) {
		return ""
	}

	start := hit - 1 - around
	if start < 0 {
		start = 0
	}
	end := hit + around
	if end > len(lines) {
		end = len(lines)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		marker := " "
		if i == hit-1 {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s %d: %s\n", marker, i+1, strings.TrimRight(lines[i], " \t\r"))
	}
	return strings.TrimRight(b.String(), "\n")
}
