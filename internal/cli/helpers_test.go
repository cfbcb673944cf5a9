package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// captureOutput captures stdout during test execution.
func captureOutput(t *testing.T, f func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	f()

	if err := w.Close(); err != nil {
		t.Fatalf("failed to close pipe writer: %v", err)
	}
	os.Stdout = old

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("failed to read captured output: %v", err)
	}
	return buf.String()
}

// runCommand runs a CLI invocation with stdout captured. The program
// name is prepended automatically.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var runErr error
	output := captureOutput(t, func() {
		runErr = Run(context.Background(), append([]string{"skillkit"}, args...))
	})
	return output, runErr
}

// writeSkillDir writes a directory-form skill under root and returns
// the SKILL.md path.
func writeSkillDir(t *testing.T, root, name, description string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatalf("failed to create skill dir: %v", err)
	}
	content := fmt.Sprintf(`---
name: %s
description: %s
keywords:
  - testing
---

# %s

Body for %s.
`, name, description, name, name)
	path := filepath.Join(dir, "SKILL.md")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write skill file: %v", err)
	}
	return path
}

// useSkillsRoot points the user tier at a temp root for one test.
func useSkillsRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("SKILLKIT_SKILLS_PATH", root)
	return root
}
