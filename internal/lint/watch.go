package lint

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/devskills/skillkit/internal/logging"
)

// DefaultDebounce is how long Watch waits after the last change before
// re-linting.
const DefaultDebounce = 500 * time.Millisecond

// WatchOptions configures continuous linting.
type WatchOptions struct {
	Options
	// Debounce overrides DefaultDebounce when positive.
	Debounce time.Duration
	// OnResult is called after every lint pass.
	OnResult func(*Result)
}

// Watch lints the paths once, then re-lints whenever a watched skill
// file changes, until the context is canceled.
func (l *Linter) Watch(ctx context.Context, paths []string, opts WatchOptions) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	run := func() error {
		result, err := l.LintPaths(ctx, paths, opts.Options)
		if err != nil {
			return err
		}
		if opts.OnResult != nil {
			opts.OnResult(result)
		}
		return nil
	}

	if err := run(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	for _, p := range paths {
		if err := addTree(watcher, p); err != nil {
			return err
		}
	}

	logging.Debug("lint watch started",
		logging.Operation("lint_watch"),
		logging.Count(len(paths)),
	)

	// Editors save in bursts; a per-path timer collapses each burst
	// into a single re-lint.
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()
	fire := make(chan string, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				// New directories join the watch but don't trigger a pass
				if event.Op&fsnotify.Create != 0 {
					_ = addTree(watcher, event.Name)
				}
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".md") {
				continue
			}
			if t, ok := timers[event.Name]; ok {
				t.Stop()
			}
			name := event.Name
			timers[name] = time.AfterFunc(opts.Debounce, func() {
				select {
				case fire <- name:
				case <-ctx.Done():
				}
			})
		case name := <-fire:
			delete(timers, name)
			logging.Debug("lint watch: change detected", logging.Path(name))
			if err := run(); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("lint watch: watcher error", logging.Err(err))
		}
	}
}

// addTree registers a path with the watcher. Directories are walked so
// nested skill folders are covered; file paths watch their parent.
func addTree(watcher *fsnotify.Watcher, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("cannot watch %q: %w", root, err)
	}
	if !info.IsDir() {
		return watcher.Add(filepath.Dir(root))
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		base := d.Name()
		if base == ".git" || base == "node_modules" {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
