// Package backup preserves skill files before destructive operations.
package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/devskills/skillkit/internal/util"
)

const (
	// DirPerm is the permission for backup directories (rwxr-x---)
	DirPerm = 0o750
	// FilePerm is the permission for backup files (rw-r-----)
	FilePerm = 0o640
)

// Manager reads and writes backups under a single directory.
type Manager struct {
	// Dir is the root backup directory
	Dir string
}

// NewManager returns a Manager for the given directory.
// If dir is empty, the default skillkit backups directory is used.
func NewManager(dir string) *Manager {
	if dir == "" {
		dir = util.SkillkitBackupsPath()
	}
	return &Manager{Dir: dir}
}

// Options configures backup behavior
type Options struct {
	Skill       string   // Skill name the file belongs to
	Description string   // Human-readable description
	Tags        []string // Tags for categorization
}

// Create creates a backup of the specified file
func (m *Manager) Create(sourcePath string, opts Options) (*Metadata, error) {
	if err := os.MkdirAll(m.Dir, DirPerm); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	// Get source file info
	sourceInfo, err := os.Stat(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat source path %q: %w", sourcePath, err)
	}

	// Read source file
	// #nosec G304 - sourcePath is controlled by the caller and validated
	content, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file %q: %w", sourcePath, err)
	}

	// Generate hash
	hash := sha256.Sum256(content)
	hashStr := hex.EncodeToString(hash[:])

	// Generate backup ID (timestamp-based)
	backupID := time.Now().Format("20060102-150405-") + hashStr[:8]

	// Backups are grouped per skill
	skillDir := filepath.Join(m.Dir, opts.Skill)
	if err := os.MkdirAll(skillDir, DirPerm); err != nil {
		return nil, fmt.Errorf("failed to create skill backup directory: %w", err)
	}

	// Determine backup filename (preserve extension)
	backupFilename := backupID + filepath.Ext(sourcePath)
	backupPath := filepath.Join(skillDir, backupFilename)

	// Write backup file
	if err := os.WriteFile(backupPath, content, FilePerm); err != nil {
		return nil, fmt.Errorf("failed to write backup file: %w", err)
	}

	// Create metadata
	metadata := &Metadata{
		ID:          backupID,
		Skill:       opts.Skill,
		SourcePath:  sourcePath,
		BackupPath:  backupPath,
		CreatedAt:   time.Now(),
		ModifiedAt:  sourceInfo.ModTime(),
		Hash:        hashStr,
		Size:        sourceInfo.Size(),
		Description: opts.Description,
		Tags:        opts.Tags,
	}

	// Load index and add backup
	index, err := m.LoadIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to load backup index: %w", err)
	}

	if err := m.addBackup(index, *metadata); err != nil {
		return nil, fmt.Errorf("failed to add backup to index: %w", err)
	}

	return metadata, nil
}

// CreateDir creates backups of all files under a directory
func (m *Manager) CreateDir(sourcePath string, opts Options) ([]Metadata, error) {
	var backups []Metadata

	err := filepath.Walk(sourcePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Skip directories
		if info.IsDir() {
			return nil
		}

		metadata, err := m.Create(path, opts)
		if err != nil {
			return fmt.Errorf("failed to backup %q: %w", path, err)
		}

		backups = append(backups, *metadata)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to backup directory: %w", err)
	}

	return backups, nil
}

// Restore restores a backup to the specified target path
func (m *Manager) Restore(backupID string, targetPath string) error {
	index, err := m.LoadIndex()
	if err != nil {
		return fmt.Errorf("failed to load backup index: %w", err)
	}

	metadata, exists := index.Backups[backupID]
	if !exists {
		return fmt.Errorf("backup %q not found", backupID)
	}

	// #nosec G304 - BackupPath was written by this manager
	content, err := os.ReadFile(metadata.BackupPath)
	if err != nil {
		return fmt.Errorf("failed to read backup file: %w", err)
	}

	// Verify hash
	hash := sha256.Sum256(content)
	hashStr := hex.EncodeToString(hash[:])
	if hashStr != metadata.Hash {
		return fmt.Errorf("backup file corrupted: hash mismatch")
	}

	// Ensure target directory exists
	targetDir := filepath.Dir(targetPath)
	if err := os.MkdirAll(targetDir, DirPerm); err != nil {
		return fmt.Errorf("failed to create target directory: %w", err)
	}

	if err := os.WriteFile(targetPath, content, FilePerm); err != nil {
		return fmt.Errorf("failed to write target file: %w", err)
	}

	return nil
}

// List returns all backups, optionally filtered by skill name
func (m *Manager) List(skill string) ([]Metadata, error) {
	index, err := m.LoadIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to load backup index: %w", err)
	}

	backups := index.ListBackups()

	if skill != "" {
		filtered := make([]Metadata, 0)
		for _, backup := range backups {
			if backup.Skill == skill {
				filtered = append(filtered, backup)
			}
		}
		return filtered, nil
	}

	return backups, nil
}

// Delete deletes a backup and removes it from the index
func (m *Manager) Delete(backupID string) error {
	index, err := m.LoadIndex()
	if err != nil {
		return fmt.Errorf("failed to load backup index: %w", err)
	}

	metadata, exists := index.Backups[backupID]
	if !exists {
		return fmt.Errorf("backup %q not found", backupID)
	}

	if err := os.Remove(metadata.BackupPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete backup file: %w", err)
	}

	if err := m.removeBackup(index, backupID); err != nil {
		return fmt.Errorf("failed to remove backup from index: %w", err)
	}

	return nil
}

// Verify verifies that a backup file is intact and matches its hash
func (m *Manager) Verify(backupID string) error {
	index, err := m.LoadIndex()
	if err != nil {
		return fmt.Errorf("failed to load backup index: %w", err)
	}

	metadata, exists := index.Backups[backupID]
	if !exists {
		return fmt.Errorf("backup %q not found", backupID)
	}

	if _, err := os.Stat(metadata.BackupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup file missing: %s", metadata.BackupPath)
	}

	// #nosec G304 - BackupPath was written by this manager
	file, err := os.Open(metadata.BackupPath)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer func() { _ = file.Close() }()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return fmt.Errorf("failed to read backup file: %w", err)
	}

	hashStr := hex.EncodeToString(hash.Sum(nil))
	if hashStr != metadata.Hash {
		return fmt.Errorf("backup file corrupted: hash mismatch (expected %s, got %s)", metadata.Hash, hashStr)
	}

	return nil
}

// History returns all backups for a specific source file, sorted by creation time (newest first)
func (m *Manager) History(sourcePath string) ([]Metadata, error) {
	index, err := m.LoadIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to load backup index: %w", err)
	}

	var history []Metadata
	for _, backup := range index.Backups {
		if backup.SourcePath == sourcePath {
			history = append(history, backup)
		}
	}

	sortNewestFirst(history)

	return history, nil
}

// sortNewestFirst orders backups by creation time, newest first.
func sortNewestFirst(backups []Metadata) {
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
}
