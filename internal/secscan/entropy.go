package secscan

import (
	"math"
	"regexp"
	"strings"
)

// DefaultEntropyThreshold is the Shannon entropy above which a token
// is suspicious enough to flag.
const DefaultEntropyThreshold = 4.5

// entropyCandidates extract token-shaped values worth measuring:
// quoted strings and bare values after = or : at line end.
var entropyCandidates = []*regexp.Regexp{
	regexp.MustCompile(`['"]([A-Za-z0-9+/=_\-]{20,})['"]`),
	regexp.MustCompile(`=\s*([A-Za-z0-9+/=_\-]{20,})\s*$`),
	regexp.MustCompile(`:\s*([A-Za-z0-9+/=_\-]{20,})\s*$`),
}

// entropyKeywords mark assignment context that raises confidence in an
// entropy hit.
var entropyKeywords = []string{"key", "secret", "token", "password", "auth", "credential", "api"}

// ShannonEntropy measures the information density of a string in bits
// per character.
func ShannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}

	counts := make(map[rune]int)
	total := 0
	for _, r := range s {
		counts[r]++
		total++
	}

	var entropy float64
	for _, c := range counts {
		p := float64(c) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// entropyCandidate is a token extracted from a line for measurement.
type entropyCandidate struct {
	value  string
	column int
}

// extractEntropyCandidates pulls measurable tokens from a line.
func extractEntropyCandidates(line string) []entropyCandidate {
	var out []entropyCandidate
	for _, re := range entropyCandidates {
		for _, idx := range re.FindAllStringSubmatchIndex(line, -1) {
			// idx[2]:idx[3] is the first capture group
			if len(idx) < 4 || idx[2] < 0 {
				continue
			}
			out = append(out, entropyCandidate{
				value:  line[idx[2]:idx[3]],
				column: idx[2] + 1,
			})
		}
	}
	return out
}

// mixedCharClasses reports whether the value uses at least two of
// upper, lower, and digit characters. Single-class strings are mostly
// hashes of nothing interesting.
func mixedCharClasses(value string) bool {
	var upper, lower, digit bool
	for _, r := range value {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	classes := 0
	for _, ok := range []bool{upper, lower, digit} {
		if ok {
			classes++
		}
	}
	return classes >= 2
}

// hasEntropyKeyword reports whether the line mentions secret-adjacent
// vocabulary.
func hasEntropyKeyword(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range entropyKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
