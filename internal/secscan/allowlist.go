package secscan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Allowlist suppresses findings a team has reviewed and accepted:
// exact values, value hashes, path globs, or whole rules.
type Allowlist struct {
	// Values are exact secret values to ignore, typically sample data.
	Values []string `yaml:"values,omitempty"`
	// Hashes are value fingerprints as reported in findings
	// ("sha256:" plus 16 hex digits), so the allowlist file never has
	// to hold the secret itself.
	Hashes []string `yaml:"hashes,omitempty"`
	// Paths are doublestar globs matched against the scanned path.
	Paths []string `yaml:"paths,omitempty"`
	// Rules disables pattern IDs outright.
	Rules []string `yaml:"rules,omitempty"`
}

// LoadAllowlist reads a YAML allowlist file.
func LoadAllowlist(path string) (*Allowlist, error) {
	// #nosec G304 - allowlist location comes from config or flags
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading allowlist %q: %w", path, err)
	}
	var a Allowlist
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parsing allowlist %q: %w", path, err)
	}
	return &a, nil
}

// Allows reports whether a hit should be suppressed. A nil allowlist
// allows nothing.
func (a *Allowlist) Allows(rule, path, value, hash string) bool {
	if a == nil {
		return false
	}
	for _, r := range a.Rules {
		if strings.EqualFold(r, rule) {
			return true
		}
	}
	for _, v := range a.Values {
		if v == value {
			return true
		}
	}
	for _, h := range a.Hashes {
		if h == hash {
			return true
		}
	}
	rel := filepath.ToSlash(path)
	for _, g := range a.Paths {
		if ok, err := doublestar.Match(g, rel); err == nil && ok {
			return true
		}
	}
	return false
}
