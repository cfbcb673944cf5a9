// Package detector probes the filesystem and environment to determine
// which skill roots are present on this machine. It backs `list
// --sources`, which reports where skills would be loaded from without
// loading them, and the project-root walk used by the library.
package detector

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/devskills/skillkit/internal/model"
	"github.com/devskills/skillkit/internal/util"
)

// DetectedRoot represents a discovered skill root with a confidence level
type DetectedRoot struct {
	Source     model.Source
	Path       string  // Directory that was detected
	Confidence float64 // 0.0-1.0, higher means more confident
	Origin     string  // How it was detected: "embedded", "env_var", "filesystem", "project_local"
}

// DetectAll probes every source and returns the roots found, in source
// precedence order.
func DetectAll(workingDir string) []DetectedRoot {
	var detected []DetectedRoot

	// The builtin root ships with the binary and is always present.
	detected = append(detected, DetectedRoot{
		Source:     model.SourceBuiltin,
		Confidence: 1.0,
		Origin:     "embedded",
	})

	detected = append(detected, detectUserRoots()...)
	detected = append(detected, detectProjectRoots(workingDir)...)

	return detected
}

// Detect probes a single source. Returns the roots found for it.
func Detect(source model.Source, workingDir string) []DetectedRoot {
	switch source {
	case model.SourceBuiltin:
		return []DetectedRoot{{Source: model.SourceBuiltin, Confidence: 1.0, Origin: "embedded"}}
	case model.SourceUser:
		return detectUserRoots()
	case model.SourceProject:
		return detectProjectRoots(workingDir)
	}
	return nil
}

// HasSource is a simpler boolean check for source presence.
func HasSource(source model.Source, workingDir string) bool {
	return len(Detect(source, workingDir)) > 0
}

// detectUserRoots checks the env override first, then the default
// user-level directories.
func detectUserRoots() []DetectedRoot {
	if env := os.Getenv("SKILLKIT_SKILLS_PATH"); env != "" {
		var roots []DetectedRoot
		for _, p := range strings.Split(env, ":") {
			p = util.ExpandPath(strings.TrimSpace(p), "")
			if dirExists(p) {
				roots = append(roots, DetectedRoot{
					Source:     model.SourceUser,
					Path:       p,
					Confidence: 1.0,
					Origin:     "env_var",
				})
			}
		}
		// An explicit env path replaces the defaults even when empty
		return roots
	}

	var roots []DetectedRoot
	for _, p := range []string{util.UserSkillsPath(), util.ClaudeUserSkillsPath()} {
		if dirExists(p) {
			roots = append(roots, DetectedRoot{
				Source:     model.SourceUser,
				Path:       p,
				Confidence: confidenceFor(p, 0.9),
				Origin:     "filesystem",
			})
		}
	}
	return roots
}

// detectProjectRoots checks the conventional project directories,
// walking up from workingDir to the repository root.
func detectProjectRoots(workingDir string) []DetectedRoot {
	if workingDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil
		}
		workingDir = cwd
	}
	projectDir := ProjectDir(workingDir)

	var roots []DetectedRoot
	for _, p := range []string{util.ProjectSkillsPath(projectDir), util.ClaudeProjectSkillsPath(projectDir)} {
		if dirExists(p) {
			roots = append(roots, DetectedRoot{
				Source:     model.SourceProject,
				Path:       p,
				Confidence: confidenceFor(p, 0.7),
				Origin:     "project_local",
			})
		}
	}
	return roots
}

// ProjectDir walks up from dir looking for a repository root (a .git
// entry). Falls back to dir itself when none is found.
func ProjectDir(dir string) string {
	current := dir
	for {
		if _, err := os.Stat(filepath.Join(current, ".git")); err == nil {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return dir
		}
		current = parent
	}
}

// confidenceFor bumps the base confidence when the root actually holds
// skill documents rather than just existing.
func confidenceFor(path string, base float64) float64 {
	entries, err := os.ReadDir(path)
	if err != nil {
		return base
	}
	for _, e := range entries {
		if e.IsDir() || strings.EqualFold(filepath.Ext(e.Name()), ".md") {
			return min(base+0.05, 1.0)
		}
	}
	return base
}

// dirExists checks if a path exists and is a directory
func dirExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
