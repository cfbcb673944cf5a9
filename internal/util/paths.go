package util

import (
	"os"
	"path/filepath"
	"strings"
)

// HomeDir returns the user's home directory
func HomeDir() string {
	home, _ := os.UserHomeDir()
	return home
}

// SkillkitConfigPath returns the skillkit configuration directory.
// Respects XDG_CONFIG_HOME when set.
func SkillkitConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "skillkit")
	}
	return filepath.Join(HomeDir(), ".config", "skillkit")
}

// SkillkitDataPath returns the directory holding user skills and backups
func SkillkitDataPath() string {
	return filepath.Join(HomeDir(), ".skillkit")
}

// SkillkitBackupsPath returns the directory where install backups are kept
func SkillkitBackupsPath() string {
	return filepath.Join(SkillkitDataPath(), "backups")
}

// SkillkitCachePath returns the library cache directory.
// Respects XDG_CACHE_HOME when set.
func SkillkitCachePath() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "skillkit")
	}
	return filepath.Join(HomeDir(), ".cache", "skillkit")
}

// UserSkillsPath returns the default user-level skills directory
func UserSkillsPath() string {
	return filepath.Join(SkillkitDataPath(), "skills")
}

// ClaudeUserSkillsPath returns the Claude Code user skills directory,
// scanned alongside the skillkit directory so existing skills are picked up
func ClaudeUserSkillsPath() string {
	return filepath.Join(HomeDir(), ".claude", "skills")
}

// ProjectSkillsPath returns the conventional skills directory for a project
func ProjectSkillsPath(projectDir string) string {
	return filepath.Join(projectDir, "skills")
}

// ClaudeProjectSkillsPath returns the project-local Claude Code skills directory
func ClaudeProjectSkillsPath(projectDir string) string {
	return filepath.Join(projectDir, ".claude", "skills")
}

// ExpandPath expands a single path: environment variables and a leading ~
// are resolved, and relative paths are joined onto baseDir. Returns ""
// for an empty input.
func ExpandPath(path, baseDir string) string {
	if path == "" {
		return ""
	}

	path = os.ExpandEnv(path)

	if path == "~" {
		return HomeDir()
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		return filepath.Join(HomeDir(), path[2:])
	}

	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	if baseDir != "" {
		return filepath.Join(baseDir, path)
	}
	return filepath.Clean(path)
}

// ExpandPaths expands each path in order, dropping entries that expand
// to the empty string.
func ExpandPaths(paths []string, baseDir string) []string {
	result := make([]string, 0, len(paths))
	for _, p := range paths {
		if expanded := ExpandPath(p, baseDir); expanded != "" {
			result = append(result, expanded)
		}
	}
	return result
}
