package model

import (
	"fmt"
	"strings"
)

// RootSpec represents a skill root with an optional explicit path.
// Supports formats: "user", "project", "project:./tools/skills", and a
// bare filesystem path (anything containing a path separator or dot).
type RootSpec struct {
	Source Source
	Path   string // Empty means the default path for the source
}

// HasPath returns true if an explicit path was specified.
func (rs RootSpec) HasPath() bool {
	return rs.Path != ""
}

// String returns the string representation of the root spec.
func (rs RootSpec) String() string {
	if rs.Path == "" {
		return string(rs.Source)
	}
	if rs.Source == "" {
		return rs.Path
	}
	return fmt.Sprintf("%s:%s", rs.Source, rs.Path)
}

// ParseRootSpec parses a root specification string.
// Formats supported:
//   - "user"                 -> Source: user, Path: "" (default path)
//   - "project"              -> Source: project, Path: ""
//   - "project:tools/skills" -> Source: project, Path: tools/skills
//   - "./skills" or "/opt/x" -> Source: "", Path as given
//
// Returns an error for empty input or an unknown source name.
func ParseRootSpec(s string) (RootSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RootSpec{}, fmt.Errorf("root spec cannot be empty")
	}

	// Anything that looks like a path is taken verbatim.
	if strings.ContainsAny(s, "/\\") || strings.HasPrefix(s, ".") || strings.HasPrefix(s, "~") {
		return RootSpec{Path: s}, nil
	}

	parts := strings.SplitN(s, ":", 2)
	source, err := ParseSource(parts[0])
	if err != nil {
		return RootSpec{}, err
	}

	spec := RootSpec{Source: source}
	if len(parts) == 2 {
		path := strings.TrimSpace(parts[1])
		if path == "" {
			return RootSpec{}, fmt.Errorf("path cannot be empty after colon in %q", s)
		}
		spec.Path = path
	}

	return spec, nil
}

// ValidateAsTarget validates the RootSpec for use as an install target.
// Builtin is read-only and never a valid target.
func (rs RootSpec) ValidateAsTarget() error {
	if rs.Source == SourceBuiltin {
		return fmt.Errorf("cannot install into the builtin source")
	}
	if rs.Source == "" && rs.Path == "" {
		return fmt.Errorf("target must name a source or a path")
	}
	return nil
}
