package parser

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultIgnoreGlobs are patterns skipped during discovery unless the
// caller supplies its own set.
var DefaultIgnoreGlobs = []string{".git/**", "node_modules/**"}

// DiscoverOptions configures skill discovery within a root.
type DiscoverOptions struct {
	// IgnoreGlobs are doublestar patterns matched against paths relative
	// to the root, using forward slashes. Matching files are skipped and
	// matching directories are not descended into.
	IgnoreGlobs []string
}

// Discover finds skill documents under root using the default ignore
// globs. A root that doesn't exist yields an empty result, not an error.
func Discover(root string) ([]string, error) {
	return DiscoverWith(root, DiscoverOptions{IgnoreGlobs: DefaultIgnoreGlobs})
}

// DiscoverWith finds skill documents under root. Two document forms are
// recognized: SKILL.md at any depth, and flat *.md files directly under
// the root. README.md and Markdown files nested inside skill directories
// are not skill documents and are excluded. Symlinked directories are
// followed with cycle detection.
func DiscoverWith(root string, opts DiscoverOptions) ([]string, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return []string{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat directory %q: %w", root, err)
	}

	var files []string
	seen := make(map[string]bool)

	err := walkFollowSymlinks(root, func(path string, info os.FileInfo) error {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." {
			return nil
		}
		relSlash := filepath.ToSlash(rel)

		if info.IsDir() {
			if matchesAnyGlob(opts.IgnoreGlobs, relSlash, true) {
				return fs.SkipDir
			}
			return nil
		}

		if matchesAnyGlob(opts.IgnoreGlobs, relSlash, false) {
			return nil
		}

		base := filepath.Base(path)
		isSkillFile := base == SkillFileName
		isFlatDoc := !strings.Contains(relSlash, "/") &&
			strings.EqualFold(filepath.Ext(base), ".md") &&
			!strings.EqualFold(base, "README.md")

		if !isSkillFile && !isFlatDoc {
			return nil
		}

		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil
		}
		if !seen[absPath] {
			seen[absPath] = true
			files = append(files, absPath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %q: %w", root, err)
	}

	return files, nil
}

// matchesAnyGlob reports whether rel matches any of the given doublestar
// patterns. For directories a trailing /** in a pattern also matches the
// directory itself, so it can be pruned before descent.
func matchesAnyGlob(globs []string, rel string, isDir bool) bool {
	for _, g := range globs {
		if ok, err := doublestar.Match(g, rel); err == nil && ok {
			return true
		}
		if isDir {
			if base, found := strings.CutSuffix(g, "/**"); found {
				if ok, err := doublestar.Match(base, rel); err == nil && ok {
					return true
				}
			}
		}
	}
	return false
}

// walkFollowSymlinks walks a directory tree, following symlinks to
// directories. Cycles are detected by tracking resolved paths. The walk
// function may return fs.SkipDir for a directory to skip its contents.
func walkFollowSymlinks(root string, walkFn func(path string, info os.FileInfo) error) error {
	visited := make(map[string]bool)
	return walkFollowSymlinksImpl(root, visited, walkFn)
}

func walkFollowSymlinksImpl(path string, visited map[string]bool, walkFn func(path string, info os.FileInfo) error) error {
	// Resolve symlinks to get the real path for cycle detection
	realPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil // Skip paths we can't resolve
	}

	// Check for cycles
	if visited[realPath] {
		return nil
	}
	visited[realPath] = true

	// Get info about the path (follows symlinks)
	info, err := os.Stat(path)
	if err != nil {
		return nil // Skip paths we can't stat
	}

	// Call the walk function
	if err := walkFn(path, info); err != nil {
		if errors.Is(err, fs.SkipDir) && info.IsDir() {
			return nil
		}
		return err
	}

	// If it's a directory, recurse into it
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil // Skip directories we can't read
		}

		for _, entry := range entries {
			childPath := filepath.Join(path, entry.Name())
			if err := walkFollowSymlinksImpl(childPath, visited, walkFn); err != nil {
				return err
			}
		}
	}

	return nil
}
