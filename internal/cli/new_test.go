package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewCommand_Reference(t *testing.T) {
	dir := t.TempDir()

	output, err := runCommand(t, "new", "compose-notes",
		"--dir", dir,
		"--description", "Compose cheat sheet",
		"--keyword", "docker",
		"--keyword", "compose")
	if err != nil {
		t.Fatalf("Run() error = %v\n%s", err, output)
	}
	if !strings.Contains(output, "created") {
		t.Errorf("output missing created message:\n%s", output)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "compose-notes", "SKILL.md"))
	if err != nil {
		t.Fatalf("scaffold not written: %v", err)
	}
	for _, want := range []string{
		"name: compose-notes",
		"description: Compose cheat sheet",
		"kind: reference",
		"- docker",
		"- compose",
	} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("scaffold missing %q:\n%s", want, raw)
		}
	}
}

func TestNewCommand_ToolGetsStubScript(t *testing.T) {
	dir := t.TempDir()

	output, err := runCommand(t, "new", "release-helper", "--dir", dir, "--kind", "tool")
	if err != nil {
		t.Fatalf("Run() error = %v\n%s", err, output)
	}
	if !strings.Contains(output, "starter script") {
		t.Errorf("output missing starter script note:\n%s", output)
	}

	script := filepath.Join(dir, "release-helper", "scripts", "run.sh")
	info, err := os.Stat(script)
	if err != nil {
		t.Fatalf("stub script not written: %v", err)
	}
	if info.Mode().Perm()&0o111 == 0 {
		t.Errorf("stub script is not executable: %v", info.Mode())
	}
}

func TestNewCommand_ExistingSkill(t *testing.T) {
	dir := t.TempDir()

	if _, err := runCommand(t, "new", "compose-notes", "--dir", dir); err != nil {
		t.Fatalf("first scaffold failed: %v", err)
	}

	_, err := runCommand(t, "new", "compose-notes", "--dir", dir)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected already exists error, got %v", err)
	}

	if _, err := runCommand(t, "new", "compose-notes", "--dir", dir, "--force"); err != nil {
		t.Errorf("--force should overwrite: %v", err)
	}
}

func TestNewCommand_CustomTemplate(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "custom.tmpl")
	tmpl := "---\nname: {{.Name}}\ndescription: {{.Description}}\n---\n\n# {{.Name}} (custom)\n"
	if err := os.WriteFile(tmplPath, []byte(tmpl), 0o600); err != nil {
		t.Fatalf("failed to write template: %v", err)
	}

	if _, err := runCommand(t, "new", "styled", "--dir", dir, "--template", tmplPath); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "styled", "SKILL.md"))
	if err != nil {
		t.Fatalf("scaffold not written: %v", err)
	}
	if !strings.Contains(string(raw), "# styled (custom)") {
		t.Errorf("custom template not used:\n%s", raw)
	}
}

func TestNewCommand_Errors(t *testing.T) {
	tests := map[string]struct {
		args    []string
		wantErr string
	}{
		"missing name": {
			args:    []string{"new"},
			wantErr: "skill name is required",
		},
		"invalid kind": {
			args:    []string{"new", "sample", "--kind", "plugin"},
			wantErr: "invalid kind",
		},
		"invalid name": {
			args:    []string{"new", "bad name"},
			wantErr: "invalid character",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			tt.args = append(tt.args, "--dir", t.TempDir())
			_, err := runCommand(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}
