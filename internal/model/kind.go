package model

import (
	"fmt"
	"strings"
)

// Kind represents the kind of skill.
// Skills are either plain reference documents or tool skills that carry
// executable helper scripts.
type Kind string

const (
	// KindReference represents a documentation skill: a cheat-sheet or
	// reference table meant to be read (default).
	KindReference Kind = "reference"

	// KindTool represents a skill that ships runnable scripts alongside
	// its documentation.
	KindTool Kind = "tool"
)

// IsValid returns true if the kind is recognized.
func (k Kind) IsValid() bool {
	switch k {
	case KindReference, KindTool:
		return true
	default:
		return false
	}
}

// AllKinds returns all supported skill kinds.
func AllKinds() []Kind {
	return []Kind{KindReference, KindTool}
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// Description returns a human-readable description of the kind.
func (k Kind) Description() string {
	switch k {
	case KindReference:
		return "Documentation skill with reference material"
	case KindTool:
		return "Skill with executable helper scripts"
	default:
		return "Unknown skill kind"
	}
}

// ParseKind converts a string to a Kind.
// Returns KindReference (default) if the string is empty.
// Returns an error if the kind is not recognized.
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return KindReference, nil
	}

	normalized := strings.ToLower(strings.TrimSpace(s))

	// Try exact match first
	k := Kind(normalized)
	if k.IsValid() {
		return k, nil
	}

	// Try common aliases
	switch normalized {
	case "doc", "docs", "documentation", "cheatsheet":
		return KindReference, nil
	case "script", "scripts", "executable":
		return KindTool, nil
	default:
		return "", fmt.Errorf("unknown skill kind %q (valid: reference, tool)", s)
	}
}
