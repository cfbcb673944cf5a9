package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultSkipDirs are directory names no scanner ever descends into.
var DefaultSkipDirs = []string{
	".git", ".svn", ".hg",
	"node_modules", "bower_components", "vendor", "packages",
	"__pycache__", ".pytest_cache", ".tox",
	"venv", ".venv", "virtualenv",
	"dist", "build", "target", "out", "obj",
	".idea", ".vscode", ".eclipse", ".settings",
	".terraform", ".serverless",
	"coverage", ".nyc_output", "htmlcov",
}

// DefaultSkipFiles are lockfiles and junk never worth scanning.
var DefaultSkipFiles = []string{
	"package-lock.json", "yarn.lock", "poetry.lock", "Pipfile.lock",
	"composer.lock", "Gemfile.lock", "Cargo.lock", "go.sum",
	".DS_Store", "Thumbs.db",
}

// WalkOptions filters the files a scanner visits.
type WalkOptions struct {
	// SkipDirs are directory basenames to prune. Nil means
	// DefaultSkipDirs.
	SkipDirs []string
	// SkipFiles are file basenames to skip. Nil means
	// DefaultSkipFiles.
	SkipFiles []string
	// MaxFileSize skips files larger than this many bytes when
	// positive.
	MaxFileSize int64
	// Include keeps only files whose root-relative path matches one of
	// these doublestar globs, when non-empty.
	Include []string
	// Exclude drops files whose root-relative path matches any of
	// these doublestar globs.
	Exclude []string
}

// Walk returns the scannable files under root in walk order. A root
// that is itself a file is returned as-is, bypassing the filters, so
// an explicitly named target is always scanned.
func Walk(ctx context.Context, root string, opts WalkOptions) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot scan %q: %w", root, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	skipDirs := toSet(opts.SkipDirs, DefaultSkipDirs)
	skipFiles := toSet(opts.SkipFiles, DefaultSkipFiles)

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if skipFiles[d.Name()] {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if len(opts.Include) > 0 && !matchAny(opts.Include, rel) {
			return nil
		}
		if matchAny(opts.Exclude, rel) {
			return nil
		}
		if opts.MaxFileSize > 0 {
			fi, err := d.Info()
			if err != nil {
				return nil
			}
			if fi.Size() > opts.MaxFileSize {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func matchAny(globs []string, rel string) bool {
	for _, g := range globs {
		if ok, err := doublestar.Match(g, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func toSet(names, fallback []string) map[string]bool {
	if names == nil {
		names = fallback
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
