// Package backup preserves skill files before destructive operations.
package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Metadata contains metadata about a single backup
type Metadata struct {
	ID          string    `json:"id"`          // Unique backup identifier (timestamp-based)
	Skill       string    `json:"skill"`       // Skill name the backup belongs to
	SourcePath  string    `json:"source_path"` // Original file path
	BackupPath  string    `json:"backup_path"` // Path to backup file
	CreatedAt   time.Time `json:"created_at"`  // Backup creation timestamp
	ModifiedAt  time.Time `json:"modified_at"` // Source modification timestamp
	Hash        string    `json:"hash"`        // SHA256 hash of content
	Size        int64     `json:"size"`        // File size in bytes
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
}

// Index maintains an index of all backups
type Index struct {
	Version string              `json:"version"`
	Updated time.Time           `json:"updated"`
	Backups map[string]Metadata `json:"backups"` // Key: backup ID
}

const (
	// IndexVersion is the current version of the backup index format
	IndexVersion = "1.0"
	// IndexFilename is the name of the index file
	IndexFilename = "index.json"
)

// indexPath returns the path to the manager's index file.
func (m *Manager) indexPath() string {
	return filepath.Join(m.Dir, IndexFilename)
}

// LoadIndex loads the backup index from disk
func (m *Manager) LoadIndex() (*Index, error) {
	indexPath := m.indexPath()

	// If index doesn't exist, return empty index
	if _, err := os.Stat(indexPath); os.IsNotExist(err) {
		return &Index{
			Version: IndexVersion,
			Updated: time.Now(),
			Backups: make(map[string]Metadata),
		}, nil
	}

	// #nosec G304 - indexPath is constructed from the manager's backup directory
	data, err := os.ReadFile(indexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read index file: %w", err)
	}

	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to parse index file: %w", err)
	}

	return &index, nil
}

// SaveIndex saves the backup index to disk
func (m *Manager) SaveIndex(index *Index) error {
	// Ensure backup directory exists
	if err := os.MkdirAll(m.Dir, DirPerm); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	index.Updated = time.Now()

	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	// #nosec G306 - index.json is metadata and can be group-readable
	if err := os.WriteFile(m.indexPath(), data, 0o640); err != nil {
		return fmt.Errorf("failed to write index file: %w", err)
	}

	return nil
}

// addBackup adds a backup entry to the index and saves it
func (m *Manager) addBackup(index *Index, metadata Metadata) error {
	if index.Backups == nil {
		index.Backups = make(map[string]Metadata)
	}

	index.Backups[metadata.ID] = metadata

	return m.SaveIndex(index)
}

// removeBackup removes a backup entry from the index and saves it
func (m *Manager) removeBackup(index *Index, id string) error {
	delete(index.Backups, id)
	return m.SaveIndex(index)
}

// ListBackups returns all backups sorted by creation time (newest first)
func (idx *Index) ListBackups() []Metadata {
	backups := make([]Metadata, 0, len(idx.Backups))
	for _, backup := range idx.Backups {
		backups = append(backups, backup)
	}

	sortNewestFirst(backups)

	return backups
}
