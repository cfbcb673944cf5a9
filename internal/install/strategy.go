// Package install copies skills from the library into writable skill roots.
package install

// OnConflict defines the behavior when a skill already exists in the target root.
type OnConflict string

const (
	// OnConflictSkip leaves the existing skill untouched.
	OnConflictSkip OnConflict = "skip"

	// OnConflictOverwrite replaces the existing skill unconditionally.
	OnConflictOverwrite OnConflict = "overwrite"

	// OnConflictBackup backs up the existing skill, then replaces it.
	OnConflictBackup OnConflict = "backup"
)

// IsValid returns true if the strategy is recognized.
func (s OnConflict) IsValid() bool {
	switch s {
	case OnConflictSkip, OnConflictOverwrite, OnConflictBackup:
		return true
	default:
		return false
	}
}

// AllOnConflicts returns all supported conflict strategies.
func AllOnConflicts() []OnConflict {
	return []OnConflict{OnConflictSkip, OnConflictOverwrite, OnConflictBackup}
}

// String returns the string representation of the strategy.
func (s OnConflict) String() string {
	return string(s)
}

// Description returns a human-readable description of the strategy.
func (s OnConflict) Description() string {
	switch s {
	case OnConflictSkip:
		return "Skip skills that already exist in the target root"
	case OnConflictOverwrite:
		return "Replace existing skills unconditionally"
	case OnConflictBackup:
		return "Back up existing skills before replacing them"
	default:
		return "Unknown strategy"
	}
}
