package gitscan

import (
	"regexp"
	"strconv"
	"strings"
)

// addition is one added line in a unified diff, positioned in the
// post-image of its file.
type addition struct {
	file string
	line int
	text string
}

var hunkRe = regexp.MustCompile(`\+(\d+)`)

// hunkStart extracts the post-image start line from a @@ header.
func hunkStart(header string) int {
	m := hunkRe.FindStringSubmatch(header)
	if m == nil {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 1
	}
	return n
}

// parseAdditions walks unified diff text and yields each added line.
// Removed lines do not advance the post-image counter; context lines
// do.
func parseAdditions(diff string) []addition {
	var out []addition
	var file string
	line := 0

	for _, raw := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(raw, "+++ b/"):
			file = strings.TrimPrefix(raw, "+++ b/")
		case strings.HasPrefix(raw, "+++"):
			// post-image is /dev/null for deletions
			file = ""
		case strings.HasPrefix(raw, "@@"):
			line = hunkStart(raw) - 1
		case strings.HasPrefix(raw, "+"):
			line++
			if file != "" {
				out = append(out, addition{file: file, line: line, text: raw[1:]})
			}
		case strings.HasPrefix(raw, "-"):
		case strings.HasPrefix(raw, `\`):
			// "\ No newline at end of file"
		default:
			line++
		}
	}
	return out
}
