package e2e

import (
	"os"
	"path/filepath"
	"testing"
)

// Fixture provides helpers for creating test files in E2E tests.
type Fixture struct {
	t       *testing.T
	baseDir string
}

// NewFixture creates a new fixture helper rooted at the given directory.
func NewFixture(t *testing.T, baseDir string) *Fixture {
	t.Helper()
	return &Fixture{
		t:       t,
		baseDir: baseDir,
	}
}

// SkillDocument renders a minimal skill document with frontmatter.
// Tests that compare raw output can reuse it as the expected content.
func SkillDocument(name, description, body string) string {
	doc := "---\n"
	doc += "name: " + name + "\n"
	if description != "" {
		doc += "description: " + description + "\n"
	}
	doc += "---\n\n"
	doc += body
	return doc
}

// WriteFile writes content to a file relative to the fixture base directory.
// It creates parent directories as needed.
func (f *Fixture) WriteFile(relPath, content string) string {
	f.t.Helper()
	fullPath := filepath.Join(f.baseDir, relPath)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		f.t.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, []byte(content), 0o600); err != nil {
		f.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}

	return fullPath
}

// WriteSkill writes a flat skill file with frontmatter and body.
func (f *Fixture) WriteSkill(relPath, name, description, body string) string {
	f.t.Helper()
	return f.WriteFile(relPath, SkillDocument(name, description, body))
}

// WriteSkillDir writes a directory-form skill (name/SKILL.md) and
// returns the SKILL.md path.
func (f *Fixture) WriteSkillDir(name, description, body string) string {
	f.t.Helper()
	return f.WriteFile(filepath.Join(name, "SKILL.md"), SkillDocument(name, description, body))
}

// MkdirAll creates a directory and all parent directories relative to the base.
func (f *Fixture) MkdirAll(relPath string) string {
	f.t.Helper()
	fullPath := filepath.Join(f.baseDir, relPath)

	if err := os.MkdirAll(fullPath, 0o750); err != nil {
		f.t.Fatalf("failed to create directory %s: %v", fullPath, err)
	}

	return fullPath
}

// Path returns the full path for a relative path.
func (f *Fixture) Path(relPath string) string {
	return filepath.Join(f.baseDir, relPath)
}

// Exists returns true if the file or directory exists.
func (f *Fixture) Exists(relPath string) bool {
	f.t.Helper()
	fullPath := filepath.Join(f.baseDir, relPath)
	_, err := os.Stat(fullPath)
	return err == nil
}

// ReadFile reads and returns the content of a file.
func (f *Fixture) ReadFile(relPath string) string {
	f.t.Helper()
	fullPath := filepath.Join(f.baseDir, relPath)

	// #nosec G304 - fullPath is constructed from trusted test fixture base and test-provided path
	data, err := os.ReadFile(fullPath)
	if err != nil {
		f.t.Fatalf("failed to read file %s: %v", fullPath, err)
	}

	return string(data)
}

// UserSkillsFixture creates a fixture helper for the default user
// skill root, creating the directory on first use. Skills written here
// appear in the user tier of the library.
func (h *Harness) UserSkillsFixture() *Fixture {
	h.t.Helper()

	skillsDir := h.UserSkillsDir()
	if err := os.MkdirAll(skillsDir, 0o750); err != nil {
		h.t.Fatalf("failed to create user skills directory: %v", err)
	}

	return NewFixture(h.t, skillsDir)
}

// TempFixture creates a fixture helper for a new temporary directory.
func (h *Harness) TempFixture() *Fixture {
	h.t.Helper()

	tempDir := h.t.TempDir()
	return NewFixture(h.t, tempDir)
}
