package lint

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatch_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	writeSkill(t, dir, "vim.md", "---\nname: vim\ndescription: ok\n---\nBody.\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(nil).Watch(ctx, []string{dir}, WatchOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Watch() error = %v, want context.Canceled", err)
	}
}

func TestWatch_RelintsOnChange(t *testing.T) {
	dir := t.TempDir()
	file := writeSkill(t, dir, "vim.md", "---\nname: vim\ndescription: ok\n---\nBody.\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := make(chan *Result, 8)
	done := make(chan error, 1)
	go func() {
		done <- New(nil).Watch(ctx, []string{dir}, WatchOptions{
			Debounce: 10 * time.Millisecond,
			OnResult: func(r *Result) {
				select {
				case results <- r:
				default:
				}
			},
		})
	}()

	// The initial pass runs before watching starts.
	select {
	case r := <-results:
		if r.Checked != 1 {
			t.Errorf("initial pass Checked = %d, want 1", r.Checked)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for initial lint pass")
	}

	// Rewrite the file until the watcher picks a change up. Retrying
	// papers over the gap between Watch returning from its first pass
	// and the kernel watch being registered.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()

	var second *Result
waitLoop:
	for {
		select {
		case second = <-results:
			break waitLoop
		case <-tick.C:
			content := "---\nname: vim\n---\nBody.\n"
			if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
				t.Fatalf("rewriting skill: %v", err)
			}
		case <-deadline:
			t.Fatal("timed out waiting for re-lint after change")
		}
	}

	if second.Checked != 1 {
		t.Errorf("re-lint Checked = %d, want 1", second.Checked)
	}
	if _, ok := findRule(second, RuleDescriptionMissing); !ok {
		t.Errorf("re-lint missed the introduced problem: %v", second.Findings)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Watch() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}

func TestWatch_MissingPath(t *testing.T) {
	dir := t.TempDir()
	err := New(nil).Watch(context.Background(), []string{filepath.Join(dir, "gone")}, WatchOptions{})
	if err == nil {
		t.Fatal("expected error for missing watch path")
	}
}
