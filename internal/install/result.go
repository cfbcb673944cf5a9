package install

import (
	"fmt"
	"strings"

	"github.com/devskills/skillkit/internal/model"
)

// Action represents the action taken on a skill during install.
type Action string

const (
	// ActionInstalled indicates a new skill was written to the target root.
	ActionInstalled Action = "installed"

	// ActionUpdated indicates an existing skill was replaced.
	ActionUpdated Action = "updated"

	// ActionSkipped indicates a skill was skipped (already exists).
	ActionSkipped Action = "skipped"

	// ActionRemoved indicates a skill was removed from the target root.
	ActionRemoved Action = "removed"

	// ActionFailed indicates an error occurred processing the skill.
	ActionFailed Action = "failed"
)

// SkillResult represents the outcome of installing a single skill.
type SkillResult struct {
	// Skill is the skill that was processed.
	Skill model.Skill

	// Action is the action that was taken.
	Action Action

	// TargetPath is the path where the skill was written (if applicable).
	TargetPath string

	// BackupID identifies the backup taken before replacement, if any.
	BackupID string

	// Error contains any error that occurred during processing.
	Error error

	// Message provides additional context about the action.
	Message string
}

// Success returns true if the skill was successfully processed.
func (sr *SkillResult) Success() bool {
	return sr.Action != ActionFailed
}

// Result contains the complete outcome of an install operation.
type Result struct {
	// TargetDir is the root directory skills were installed into.
	TargetDir string

	// OnConflict is the conflict strategy used.
	OnConflict OnConflict

	// Skills contains the result for each processed skill.
	Skills []SkillResult

	// DryRun indicates if this was a dry run (no changes made).
	DryRun bool
}

// Installed returns skills that were newly written.
func (r *Result) Installed() []SkillResult {
	return r.filterByAction(ActionInstalled)
}

// Updated returns skills that replaced an existing copy.
func (r *Result) Updated() []SkillResult {
	return r.filterByAction(ActionUpdated)
}

// Skipped returns skills that were skipped.
func (r *Result) Skipped() []SkillResult {
	return r.filterByAction(ActionSkipped)
}

// Removed returns skills that were removed.
func (r *Result) Removed() []SkillResult {
	return r.filterByAction(ActionRemoved)
}

// Failed returns skills that failed to install.
func (r *Result) Failed() []SkillResult {
	return r.filterByAction(ActionFailed)
}

// filterByAction returns skills with the given action.
func (r *Result) filterByAction(action Action) []SkillResult {
	var filtered []SkillResult
	for _, sr := range r.Skills {
		if sr.Action == action {
			filtered = append(filtered, sr)
		}
	}
	return filtered
}

// Success returns true if all skills were successfully processed.
func (r *Result) Success() bool {
	return len(r.Failed()) == 0
}

// TotalProcessed returns the total number of skills processed.
func (r *Result) TotalProcessed() int {
	return len(r.Skills)
}

// TotalChanged returns the number of skills that were installed, updated, or removed.
func (r *Result) TotalChanged() int {
	return len(r.Installed()) + len(r.Updated()) + len(r.Removed())
}

// Summary returns a human-readable summary of the install result.
func (r *Result) Summary() string {
	var sb strings.Builder

	if r.DryRun {
		sb.WriteString("Dry run - no changes made\n")
	}

	sb.WriteString(fmt.Sprintf("Installed into %s using %s strategy\n",
		r.TargetDir, r.OnConflict))

	sb.WriteString(fmt.Sprintf("  Installed: %d\n", len(r.Installed())))
	sb.WriteString(fmt.Sprintf("  Updated:   %d\n", len(r.Updated())))
	sb.WriteString(fmt.Sprintf("  Skipped:   %d\n", len(r.Skipped())))
	sb.WriteString(fmt.Sprintf("  Failed:    %d\n", len(r.Failed())))

	if !r.Success() {
		sb.WriteString("\nErrors:\n")
		for _, f := range r.Failed() {
			sb.WriteString(fmt.Sprintf("  - %s: %v\n", f.Skill.Name, f.Error))
		}
	}

	return sb.String()
}
