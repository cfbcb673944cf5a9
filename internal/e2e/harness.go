// Package e2e drives the CLI end to end. Commands run in-process
// against an isolated home directory, with stdout captured and the
// exit code derived the same way main derives it.
package e2e

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/devskills/skillkit/internal/cli"
)

// Result contains the outcome of running a CLI command.
type Result struct {
	// Stdout contains the captured standard output.
	Stdout string
	// Err is the error returned by the CLI command, if any.
	Err error
	// ExitCode is the status main would exit with for Err.
	ExitCode int
}

// Success returns true if the command completed without error.
func (r *Result) Success() bool {
	return r.Err == nil
}

// Harness runs CLI commands in an isolated environment. Every harness
// owns a fresh home directory, so user skills, config, cache, and
// backups never leak between tests.
type Harness struct {
	t       *testing.T
	homeDir string
}

// NewHarness creates a new E2E test harness. All path-shaping
// environment variables point inside a temp home, and overrides from
// the outer environment are neutralized.
func NewHarness(t *testing.T) *Harness {
	t.Helper()

	homeDir := t.TempDir()
	h := &Harness{t: t, homeDir: homeDir}

	h.SetEnv("HOME", homeDir)
	h.SetEnv("XDG_CONFIG_HOME", filepath.Join(homeDir, ".config"))
	h.SetEnv("XDG_CACHE_HOME", filepath.Join(homeDir, ".cache"))

	// Empty values are treated as unset by the config layer.
	h.SetEnv("SKILLKIT_SKILLS_PATH", "")
	h.SetEnv("SKILLKIT_BACKUP_LOCATION", "")
	h.SetEnv("SKILLKIT_CACHE_LOCATION", "")

	return h
}

// SetEnv sets an environment variable for CLI commands run through
// this harness. The previous value is restored after the test.
func (h *Harness) SetEnv(key, value string) {
	h.t.Helper()
	h.t.Setenv(key, value)
}

// HomeDir returns the isolated home directory for this test harness.
func (h *Harness) HomeDir() string {
	return h.homeDir
}

// UserSkillsDir returns the default user skill root inside the
// harness home. Skills installed without --to land here.
func (h *Harness) UserSkillsDir() string {
	return filepath.Join(h.homeDir, ".skillkit", "skills")
}

// Run executes a CLI command with the given arguments and captures the
// output. The program name is prepended automatically.
func (h *Harness) Run(args ...string) *Result {
	h.t.Helper()

	if len(args) == 0 || args[0] != "skillkit" {
		args = append([]string{"skillkit"}, args...)
	}

	oldStdout := os.Stdout
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		h.t.Fatalf("failed to create stdout pipe: %v", err)
	}
	os.Stdout = stdoutW

	// Drain the pipe while the command runs. Output larger than the
	// pipe buffer (~64KB) would otherwise block the writer, and full
	// skill documents cross that line easily.
	var stdoutBuf bytes.Buffer
	var copyErr error
	copyDone := make(chan struct{})
	go func() {
		defer close(copyDone)
		_, copyErr = io.Copy(&stdoutBuf, stdoutR)
	}()

	cmdErr := cli.Run(context.Background(), args)

	if err := stdoutW.Close(); err != nil {
		h.t.Fatalf("failed to close stdout pipe writer: %v", err)
	}
	os.Stdout = oldStdout

	<-copyDone
	if copyErr != nil {
		h.t.Fatalf("failed to read captured stdout: %v", copyErr)
	}

	return &Result{
		Stdout:   stdoutBuf.String(),
		Err:      cmdErr,
		ExitCode: cli.ExitCode(cmdErr),
	}
}
