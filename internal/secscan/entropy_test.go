package secscan

import (
	"math"
	"testing"
)

// highEntropyValue has 32 distinct characters, so its entropy is
// exactly log2(32) = 5.0 bits.
const highEntropyValue = "Zq7PmK9xRt2WvNb4Lc8JhF3DgYs5UwEa"

func TestShannonEntropy(t *testing.T) {
	tests := map[string]struct {
		in   string
		want float64
	}{
		"empty":         {"", 0},
		"single repeat": {"aaaa", 0},
		"two symbols":   {"aabb", 1.0},
		"four symbols":  {"abcd", 2.0},
		"high":          {highEntropyValue, 5.0},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := ShannonEntropy(tt.in)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ShannonEntropy(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractEntropyCandidates(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantValue  string
		wantColumn int
	}{
		{"quoted", `auth_code = "` + highEntropyValue + `"`, highEntropyValue, 14},
		{"after equals", `SECRET=` + highEntropyValue, highEntropyValue, 8},
		{"after colon", `key: ` + highEntropyValue, highEntropyValue, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractEntropyCandidates(tt.line)
			if len(got) != 1 {
				t.Fatalf("extractEntropyCandidates(%q) returned %d candidates, want 1", tt.line, len(got))
			}
			if got[0].value != tt.wantValue {
				t.Errorf("value = %q, want %q", got[0].value, tt.wantValue)
			}
			if got[0].column != tt.wantColumn {
				t.Errorf("column = %d, want %d", got[0].column, tt.wantColumn)
			}
		})
	}
}

func TestExtractEntropyCandidates_None(t *testing.T) {
	for _, line := range []string{
		`x = "short"`,
		`if err != nil {`,
		"",
	} {
		if got := extractEntropyCandidates(line); len(got) != 0 {
			t.Errorf("extractEntropyCandidates(%q) = %v, want none", line, got)
		}
	}
}

func TestMixedCharClasses(t *testing.T) {
	tests := map[string]bool{
		"abcDEF":           true,
		"abc123":           true,
		"ABC123":           true,
		"abcdefgh":         false,
		"12345678":         false,
		"ABCDEFGH":         false,
		"":                 false,
		highEntropyValue:   true,
		"________________": false,
	}
	for in, want := range tests {
		if got := mixedCharClasses(in); got != want {
			t.Errorf("mixedCharClasses(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestHasEntropyKeyword(t *testing.T) {
	tests := map[string]bool{
		`API_KEY = "x"`:      true,
		`client_secret: abc`: true,
		`Token := load()`:    true,
		`count = 12`:         false,
		`data := parse(buf)`: false,
	}
	for in, want := range tests {
		if got := hasEntropyKeyword(in); got != want {
			t.Errorf("hasEntropyKeyword(%q) = %v, want %v", in, got, want)
		}
	}
}
