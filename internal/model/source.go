package model

import (
	"fmt"
	"strings"
)

// Source identifies where a skill came from in the tiered lookup.
// Sources follow a precedence order where more local sources override
// more general ones.
type Source string

const (
	// SourceBuiltin represents skills embedded in the binary.
	SourceBuiltin Source = "builtin"

	// SourceUser represents skills in the user's home directory.
	SourceUser Source = "user"

	// SourceProject represents skills local to the current project.
	SourceProject Source = "project"
)

// sourcePrecedence defines the override order for skill sources.
// Higher index = higher precedence (overrides lower).
var sourcePrecedence = map[Source]int{
	SourceBuiltin: 0,
	SourceUser:    1,
	SourceProject: 2,
}

// IsValid returns true if the source is recognized.
func (s Source) IsValid() bool {
	_, ok := sourcePrecedence[s]
	return ok
}

// AllSources returns all supported sources in precedence order (lowest to highest).
func AllSources() []Source {
	return []Source{SourceBuiltin, SourceUser, SourceProject}
}

// String returns the string representation of the source.
func (s Source) String() string {
	return string(s)
}

// Description returns a human-readable description of the source.
func (s Source) Description() string {
	switch s {
	case SourceBuiltin:
		return "Skills embedded in the skillkit binary"
	case SourceUser:
		return "User-level skills in the home directory"
	case SourceProject:
		return "Project-level skills local to the working tree"
	default:
		return "Unknown source"
	}
}

// Precedence returns the precedence level of the source.
// Higher values indicate higher precedence (overrides lower).
func (s Source) Precedence() int {
	if p, ok := sourcePrecedence[s]; ok {
		return p
	}
	return -1
}

// IsHigherPrecedence returns true if this source has higher precedence than other.
func (s Source) IsHigherPrecedence(other Source) bool {
	return s.Precedence() > other.Precedence()
}

// ParseSource converts a string to a Source.
// Returns an error if the source is not recognized.
func ParseSource(s string) (Source, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))

	// Try exact match first
	source := Source(normalized)
	if source.IsValid() {
		return source, nil
	}

	// Try common aliases
	switch normalized {
	case "embedded", "built-in", "default":
		return SourceBuiltin, nil
	case "global", "home":
		return SourceUser, nil
	case "repo", "repository", "local":
		return SourceProject, nil
	default:
		return "", fmt.Errorf("unknown source %q (valid: builtin, user, project)", s)
	}
}
