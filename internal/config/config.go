// Package config provides configuration management for skillkit.
// It supports YAML configuration files, environment variables, and sensible defaults.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/devskills/skillkit/internal/install"
	"github.com/devskills/skillkit/internal/util"
)

// Config represents the complete skillkit configuration.
type Config struct {
	// Library configures where skills are discovered
	Library LibraryConfig `yaml:"library"`

	// Lint configures hygiene check behavior
	Lint LintConfig `yaml:"lint"`

	// Scan configures the security scanners
	Scan ScanConfig `yaml:"scan"`

	// Install configures default install behavior
	Install InstallConfig `yaml:"install"`

	// Cache configures library caching behavior
	Cache CacheConfig `yaml:"cache"`

	// Output configures display preferences
	Output OutputConfig `yaml:"output"`

	// Backup configures backup behavior
	Backup BackupConfig `yaml:"backup"`

	// Similarity configures duplicate detection thresholds
	Similarity SimilarityConfig `yaml:"similarity"`
}

// LibraryConfig holds skill discovery settings.
type LibraryConfig struct {
	// ExtraRoots is an ordered list of additional directories to search for
	// skills, after the built-in, user, and project roots. Paths can use ~
	// for home directory or be relative (resolved from the working directory).
	ExtraRoots []string `yaml:"extra_roots,omitempty"`
	// IgnoreGlobs are doublestar patterns for paths excluded from discovery
	IgnoreGlobs []string `yaml:"ignore_globs,omitempty"`
}

// LintConfig holds hygiene check settings.
type LintConfig struct {
	// Strict promotes warnings to errors
	Strict bool `yaml:"strict"`
	// MaxDescriptionLength is the longest allowed description field
	MaxDescriptionLength int `yaml:"max_description_length"`
	// DisabledRules lists rule IDs to skip
	DisabledRules []string `yaml:"disabled_rules,omitempty"`
}

// ScanConfig holds security scanner settings.
type ScanConfig struct {
	// EntropyThreshold is the minimum Shannon entropy for generic secret hits
	EntropyThreshold float64 `yaml:"entropy_threshold"`
	// SkipDirs are directory names excluded from scanning
	SkipDirs []string `yaml:"skip_dirs,omitempty"`
	// MaxFileSize is the largest file in bytes a scanner will read
	MaxFileSize int64 `yaml:"max_file_size"`
	// AllowlistFile points to a YAML allowlist of known false positives
	AllowlistFile string `yaml:"allowlist_file,omitempty"`
}

// InstallConfig holds default install settings.
type InstallConfig struct {
	// OnConflict is the default conflict resolution strategy
	OnConflict string `yaml:"on_conflict"`
	// AutoBackup enables automatic backup before overwriting
	AutoBackup bool `yaml:"auto_backup"`
}

// CacheConfig holds caching settings.
type CacheConfig struct {
	// Enabled enables or disables caching
	Enabled bool `yaml:"enabled"`
	// TTL is the time-to-live for cache entries
	TTL time.Duration `yaml:"ttl"`
	// Location is the cache directory path
	Location string `yaml:"location"`
}

// OutputConfig holds display preferences.
type OutputConfig struct {
	// Format is the default output format (table, json, yaml)
	Format string `yaml:"format"`
	// Color controls color output (auto, always, never)
	Color string `yaml:"color"`
	// Verbose enables verbose output
	Verbose bool `yaml:"verbose"`
}

// BackupConfig holds backup settings.
type BackupConfig struct {
	// Enabled enables automatic backups
	Enabled bool `yaml:"enabled"`
	// Location is the backup directory path
	Location string `yaml:"location"`
	// MaxBackups is the maximum number of backups to keep per skill
	MaxBackups int `yaml:"max_backups"`
}

// SimilarityConfig holds duplicate detection settings.
type SimilarityConfig struct {
	// NameThreshold is the minimum score for name similarity (0.0-1.0)
	NameThreshold float64 `yaml:"name_threshold"`
	// ContentThreshold is the minimum score for content similarity (0.0-1.0)
	ContentThreshold float64 `yaml:"content_threshold"`
	// Algorithm is the default similarity algorithm (levenshtein, jaro-winkler, combined)
	Algorithm string `yaml:"algorithm"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Library: LibraryConfig{
			IgnoreGlobs: []string{
				"**/node_modules/**",
				"**/.git/**",
			},
		},
		Lint: LintConfig{
			Strict:               false,
			MaxDescriptionLength: 1024,
		},
		Scan: ScanConfig{
			EntropyThreshold: 4.5,
			MaxFileSize:      1 << 20, // 1 MiB
		},
		Install: InstallConfig{
			OnConflict: string(install.OnConflictSkip),
			AutoBackup: true,
		},
		Cache: CacheConfig{
			Enabled:  true,
			TTL:      time.Hour,
			Location: util.SkillkitCachePath(),
		},
		Output: OutputConfig{
			Format:  "table",
			Color:   "auto",
			Verbose: false,
		},
		Backup: BackupConfig{
			Enabled:    true,
			Location:   util.SkillkitBackupsPath(),
			MaxBackups: 10,
		},
		Similarity: SimilarityConfig{
			NameThreshold:    0.7, // 70% match required for name similarity
			ContentThreshold: 0.6, // 60% match required for content similarity
			Algorithm:        "combined",
		},
	}
}

// configFileName is the name of the config file.
const configFileName = "config.yaml"

// FilePath returns the path to the config file.
func FilePath() string {
	return filepath.Join(util.SkillkitConfigPath(), configFileName)
}

// Load loads the configuration from file, merging with defaults.
// If the config file doesn't exist, returns default configuration.
func Load() (*Config, error) {
	cfg := Default()

	// Try to load from file
	configPath := FilePath()
	// #nosec G304 - configPath is constructed from trusted config directory
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file, use defaults with environment overrides
			cfg.applyEnvironment()
			return cfg, nil
		}
		return nil, err
	}

	// Parse YAML over defaults
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Apply environment variable overrides
	cfg.applyEnvironment()

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	// #nosec G304 - path is provided by caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnvironment()
	return cfg, nil
}

// Save writes the configuration to the config file.
func (c *Config) Save() error {
	configPath := FilePath()

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// #nosec G306 - config file should be readable by user
	return os.WriteFile(configPath, data, 0o644)
}

// SaveToPath writes the configuration to a specific path.
func (c *Config) SaveToPath(path string) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// #nosec G306 - config file should be readable by user
	return os.WriteFile(path, data, 0o644)
}

// applyEnvironment applies environment variable overrides.
// Environment variables follow the pattern SKILLKIT_<SECTION>_<KEY>.
func (c *Config) applyEnvironment() {
	// Library settings
	if v := os.Getenv("SKILLKIT_LIBRARY_EXTRA_ROOTS"); v != "" {
		c.Library.ExtraRoots = splitPaths(v)
	}
	if v := os.Getenv("SKILLKIT_LIBRARY_IGNORE_GLOBS"); v != "" {
		c.Library.IgnoreGlobs = splitPaths(v)
	}

	// Lint settings
	if v := os.Getenv("SKILLKIT_LINT_STRICT"); v != "" {
		c.Lint.Strict = parseBool(v)
	}
	if v := os.Getenv("SKILLKIT_LINT_MAX_DESCRIPTION_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Lint.MaxDescriptionLength = n
		}
	}

	// Scan settings
	if v := os.Getenv("SKILLKIT_SCAN_ENTROPY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			c.Scan.EntropyThreshold = f
		}
	}
	if v := os.Getenv("SKILLKIT_SCAN_MAX_FILE_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			c.Scan.MaxFileSize = n
		}
	}
	if v := os.Getenv("SKILLKIT_SCAN_ALLOWLIST_FILE"); v != "" {
		c.Scan.AllowlistFile = v
	}

	// Install settings
	if v := os.Getenv("SKILLKIT_INSTALL_ON_CONFLICT"); v != "" {
		c.Install.OnConflict = v
	}
	if v := os.Getenv("SKILLKIT_INSTALL_AUTO_BACKUP"); v != "" {
		c.Install.AutoBackup = parseBool(v)
	}

	// Cache settings
	if v := os.Getenv("SKILLKIT_CACHE_ENABLED"); v != "" {
		c.Cache.Enabled = parseBool(v)
	}
	if v := os.Getenv("SKILLKIT_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Cache.TTL = d
		}
	}
	if v := os.Getenv("SKILLKIT_CACHE_LOCATION"); v != "" {
		c.Cache.Location = v
	}

	// Output settings
	if v := os.Getenv("SKILLKIT_OUTPUT_FORMAT"); v != "" {
		c.Output.Format = v
	}
	if v := os.Getenv("SKILLKIT_OUTPUT_COLOR"); v != "" {
		c.Output.Color = v
	}
	if v := os.Getenv("SKILLKIT_OUTPUT_VERBOSE"); v != "" {
		c.Output.Verbose = parseBool(v)
	}

	// Backup settings
	if v := os.Getenv("SKILLKIT_BACKUP_ENABLED"); v != "" {
		c.Backup.Enabled = parseBool(v)
	}
	if v := os.Getenv("SKILLKIT_BACKUP_LOCATION"); v != "" {
		c.Backup.Location = v
	}
	if v := os.Getenv("SKILLKIT_BACKUP_MAX_BACKUPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Backup.MaxBackups = n
		}
	}

	// Similarity settings
	if v := os.Getenv("SKILLKIT_SIMILARITY_NAME_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			c.Similarity.NameThreshold = f
		}
	}
	if v := os.Getenv("SKILLKIT_SIMILARITY_CONTENT_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			c.Similarity.ContentThreshold = f
		}
	}
	if v := os.Getenv("SKILLKIT_SIMILARITY_ALGORITHM"); v != "" {
		c.Similarity.Algorithm = v
	}
}

// parseBool parses a boolean from common string representations.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// splitPaths splits a colon-separated path string into individual paths.
// Empty segments are filtered out.
func splitPaths(s string) []string {
	parts := strings.Split(s, ":")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// GetOnConflict returns the install conflict strategy from config, validating it.
func (c *Config) GetOnConflict() install.OnConflict {
	strategy := install.OnConflict(c.Install.OnConflict)
	if strategy.IsValid() {
		return strategy
	}
	return install.OnConflictSkip
}

// ExtraRootPaths returns the configured extra library roots, expanded and
// in order. The baseDir is used for resolving relative paths.
func (c *Config) ExtraRootPaths(baseDir string) []string {
	return util.ExpandPaths(c.Library.ExtraRoots, baseDir)
}

// RuleDisabled reports whether a lint rule has been disabled in config.
func (c *Config) RuleDisabled(id string) bool {
	for _, r := range c.Lint.DisabledRules {
		if strings.EqualFold(strings.TrimSpace(r), id) {
			return true
		}
	}
	return false
}

// Exists returns true if a config file exists.
func Exists() bool {
	_, err := os.Stat(FilePath())
	return err == nil
}
