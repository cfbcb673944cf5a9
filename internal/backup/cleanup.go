package backup

import (
	"fmt"
	"time"
)

// CleanupOptions configures backup cleanup behavior
type CleanupOptions struct {
	// MaxBackups limits the number of backups to keep per skill (0 = unlimited)
	MaxBackups int

	// MaxAge is the maximum age of backups to keep (0 = unlimited)
	MaxAge time.Duration

	// KeepAtLeastOne ensures at least one backup is kept per source file
	KeepAtLeastOne bool

	// Skill filters cleanup to a specific skill (empty = all skills)
	Skill string

	// DryRun previews what would be deleted without actually deleting
	DryRun bool
}

// DefaultCleanupOptions returns sensible defaults for cleanup
func DefaultCleanupOptions() CleanupOptions {
	return CleanupOptions{
		MaxBackups:     10,                  // Keep last 10 backups per skill
		MaxAge:         30 * 24 * time.Hour, // Keep backups for 30 days
		KeepAtLeastOne: true,
	}
}

// Cleanup removes old backups based on the specified options
func (m *Manager) Cleanup(opts CleanupOptions) ([]string, error) {
	index, err := m.LoadIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to load backup index: %w", err)
	}

	// Group backups by skill and source path
	type backupGroup struct {
		backups []Metadata
	}

	groups := make(map[string]*backupGroup)

	for _, backup := range index.Backups {
		if opts.Skill != "" && backup.Skill != opts.Skill {
			continue
		}

		key := backup.Skill + ":" + backup.SourcePath
		if _, exists := groups[key]; !exists {
			groups[key] = &backupGroup{}
		}
		groups[key].backups = append(groups[key].backups, backup)
	}

	for _, group := range groups {
		sortNewestFirst(group.backups)
	}

	// Determine which backups to delete
	var toDelete []string
	now := time.Now()

	for _, group := range groups {
		keepCount := 0
		for idx, backup := range group.backups {
			shouldDelete := false

			// Check age
			if opts.MaxAge > 0 && now.Sub(backup.CreatedAt) > opts.MaxAge {
				shouldDelete = true
			}

			// Check count limit
			if opts.MaxBackups > 0 && idx >= opts.MaxBackups {
				shouldDelete = true
			}

			if !shouldDelete {
				keepCount++
			}

			if shouldDelete {
				toDelete = append(toDelete, backup.ID)
			}
		}

		// If KeepAtLeastOne is true and we're deleting everything, keep the newest
		if opts.KeepAtLeastOne && keepCount == 0 && len(toDelete) > 0 {
			toDelete = toDelete[1:]
		}
	}

	// Delete backups (or just return the list in dry-run mode)
	var deleted []string
	for _, backupID := range toDelete {
		if opts.DryRun {
			deleted = append(deleted, backupID)
		} else {
			if err := m.Delete(backupID); err != nil {
				return deleted, fmt.Errorf("failed to delete backup %q: %w", backupID, err)
			}
			deleted = append(deleted, backupID)
		}
	}

	return deleted, nil
}

// Stats contains statistics about backups
type Stats struct {
	TotalBackups   int
	TotalSize      int64
	BackupsBySkill map[string]int
	OldestBackup   time.Time
	NewestBackup   time.Time
}

// GetStats returns statistics about backups
func (m *Manager) GetStats() (*Stats, error) {
	index, err := m.LoadIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to load backup index: %w", err)
	}

	stats := &Stats{
		TotalBackups:   len(index.Backups),
		BackupsBySkill: make(map[string]int),
		OldestBackup:   time.Now(),
	}

	for _, backup := range index.Backups {
		stats.TotalSize += backup.Size
		stats.BackupsBySkill[backup.Skill]++

		if backup.CreatedAt.Before(stats.OldestBackup) {
			stats.OldestBackup = backup.CreatedAt
		}
		if backup.CreatedAt.After(stats.NewestBackup) {
			stats.NewestBackup = backup.CreatedAt
		}
	}

	// Reset oldest if no backups
	if stats.TotalBackups == 0 {
		stats.OldestBackup = time.Time{}
	}

	return stats, nil
}
