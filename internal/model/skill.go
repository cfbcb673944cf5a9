package model

import "time"

// Skill represents a single skill document: a Markdown reference with a
// metadata header, optionally backed by a directory of supporting files.
type Skill struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Kind        Kind              `json:"kind"`
	Source      Source            `json:"source"`
	Path        string            `json:"path"`
	Dir         string            `json:"dir,omitempty"`
	Keywords    []string          `json:"keywords,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Content     string            `json:"content"`
	ModifiedAt  time.Time         `json:"modified_at,omitempty"`

	// Supporting files, relative to Dir.
	References []string `json:"references,omitempty"`
	Scripts    []string `json:"scripts,omitempty"`
	Assets     []string `json:"assets,omitempty"`

	// Requires names other skills this one builds on.
	Requires []string `json:"requires,omitempty"`
}

// IsHigherPrecedence returns true if this skill's source overrides the other's.
func (s Skill) IsHigherPrecedence(other Skill) bool {
	return s.Source.IsHigherPrecedence(other.Source)
}

// HasDirectory returns true if the skill is a directory-style skill
// (SKILL.md inside its own folder) rather than a flat Markdown file.
func (s Skill) HasDirectory() bool {
	return s.Dir != ""
}
