// Package library aggregates skills from every configured root and
// resolves name collisions by source precedence: project overrides
// user, user overrides builtin.
package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/devskills/skillkit/internal/cache"
	"github.com/devskills/skillkit/internal/config"
	"github.com/devskills/skillkit/internal/detector"
	"github.com/devskills/skillkit/internal/logging"
	"github.com/devskills/skillkit/internal/model"
	"github.com/devskills/skillkit/internal/parser"
	"github.com/devskills/skillkit/internal/progress"
	embedded "github.com/devskills/skillkit/internal/skills"
	"github.com/devskills/skillkit/internal/util"
)

// ErrNotFound is returned when a skill name resolves to nothing.
var ErrNotFound = errors.New("skill not found")

// Root is a single location skills are loaded from.
type Root struct {
	Source model.Source
	Path   string // Empty for the embedded builtin root
}

// Options configures a library load.
type Options struct {
	// Config supplies roots and cache settings. Nil means defaults.
	Config *config.Config
	// WorkingDir anchors project-root discovery. Defaults to the
	// current directory.
	WorkingDir string
	// Sources restricts the load to the listed sources. Empty means all.
	Sources []model.Source
	// NoCache bypasses the parse cache for this load.
	NoCache bool
}

// Roots resolves the search roots in precedence order, lowest first.
// SKILLKIT_SKILLS_PATH (colon-separated) replaces the default user
// roots; configured extra roots rank as user-level.
func Roots(cfg *config.Config, workingDir string) []Root {
	if cfg == nil {
		cfg = config.Default()
	}
	if workingDir == "" {
		if cwd, err := os.Getwd(); err == nil {
			workingDir = cwd
		}
	}

	roots := []Root{{Source: model.SourceBuiltin}}

	if env := os.Getenv("SKILLKIT_SKILLS_PATH"); env != "" {
		for _, p := range strings.Split(env, ":") {
			if p = strings.TrimSpace(p); p != "" {
				roots = append(roots, Root{Source: model.SourceUser, Path: util.ExpandPath(p, "")})
			}
		}
	} else {
		roots = append(roots,
			Root{Source: model.SourceUser, Path: util.UserSkillsPath()},
			Root{Source: model.SourceUser, Path: util.ClaudeUserSkillsPath()},
		)
	}

	for _, p := range cfg.ExtraRootPaths(workingDir) {
		roots = append(roots, Root{Source: model.SourceUser, Path: p})
	}

	projectDir := detector.ProjectDir(workingDir)
	roots = append(roots,
		Root{Source: model.SourceProject, Path: util.ProjectSkillsPath(projectDir)},
		Root{Source: model.SourceProject, Path: util.ClaudeProjectSkillsPath(projectDir)},
	)

	return roots
}

// Library holds the merged skill set from one load.
type Library struct {
	skills []model.Skill
	byName map[string]model.Skill
	roots  []Root
}

// New builds a library from already-loaded skills. Name collisions are
// resolved by source precedence; within the same source the first
// occurrence wins.
func New(skills []model.Skill) *Library {
	byName := make(map[string]model.Skill)

	for _, skill := range skills {
		key := nameKey(skill.Name)
		existing, exists := byName[key]
		if !exists {
			byName[key] = skill
			continue
		}
		if skill.IsHigherPrecedence(existing) {
			logging.Debug("library: skill override",
				logging.Skill(skill.Name),
				slog.String("new_source", string(skill.Source)),
				slog.String("existing_source", string(existing.Source)),
			)
			byName[key] = skill
		}
	}

	lib := &Library{
		skills: make([]model.Skill, 0, len(byName)),
		byName: byName,
	}
	for _, skill := range byName {
		lib.skills = append(lib.skills, skill)
	}
	sort.Slice(lib.skills, func(i, j int) bool {
		return lib.skills[i].Name < lib.skills[j].Name
	})

	return lib
}

// Load parses every root and returns the merged library. Nonexistent
// roots are skipped; per-file parse failures are logged as warnings.
func Load(ctx context.Context, opts Options) (*Library, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	roots := Roots(cfg, opts.WorkingDir)
	if len(opts.Sources) > 0 {
		want := make(map[model.Source]bool, len(opts.Sources))
		for _, s := range opts.Sources {
			want[s] = true
		}
		filtered := roots[:0]
		for _, root := range roots {
			if want[root.Source] {
				filtered = append(filtered, root)
			}
		}
		roots = filtered
	}

	var parseCache *cache.Cache
	if cfg.Cache.Enabled && !opts.NoCache {
		c, err := cache.New("library", cfg.Cache.Location)
		if err != nil {
			logging.Warn("library: cache unavailable", logging.Err(err))
		} else {
			parseCache = c
		}
	}

	bar := progress.Simple(int64(len(roots)), "Loading skill roots")
	defer bar.Finish()

	var all []model.Skill
	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		loaded, err := loadRoot(root, cfg, parseCache)
		if err != nil {
			return nil, err
		}
		all = append(all, loaded...)
		_ = bar.Add(1)
	}

	if parseCache != nil {
		if err := parseCache.Save(); err != nil {
			logging.Warn("library: cache save failed", logging.Err(err))
		}
	}

	lib := New(all)
	lib.roots = roots

	logging.Debug("library load complete",
		logging.Operation("library_load"),
		logging.Count(lib.Len()),
	)

	return lib, nil
}

// loadRoot reads one root. The builtin root comes from the embedded
// filesystem; disk roots are discovered and parsed file by file.
func loadRoot(root Root, cfg *config.Config, parseCache *cache.Cache) ([]model.Skill, error) {
	if root.Source == model.SourceBuiltin && root.Path == "" {
		loaded, err := embedded.Load()
		if err != nil {
			return nil, fmt.Errorf("loading builtin skills: %w", err)
		}
		return loaded, nil
	}

	if _, err := os.Stat(root.Path); os.IsNotExist(err) {
		logging.Debug("library: root not found",
			logging.Source(string(root.Source)),
			logging.Path(root.Path),
		)
		return nil, nil
	}

	files, err := parser.DiscoverWith(root.Path, parser.DiscoverOptions{IgnoreGlobs: ignoreGlobs(cfg)})
	if err != nil {
		logging.Warn("library: discovery failed",
			logging.Path(root.Path),
			logging.Err(err),
		)
		return nil, nil
	}

	loaded := make([]model.Skill, 0, len(files))
	for _, file := range files {
		if parseCache != nil {
			if skill, ok := parseCache.Get(file); ok {
				skill.Source = root.Source
				loaded = append(loaded, skill)
				continue
			}
		}

		skill, err := parser.ParseSkillFile(file)
		if err != nil {
			logging.Warn("library: skipping unparseable skill",
				logging.Path(file),
				logging.Err(err),
			)
			continue
		}
		skill.Source = root.Source

		if parseCache != nil {
			parseCache.Set(file, skill)
		}
		loaded = append(loaded, skill)
	}

	return loaded, nil
}

// ignoreGlobs returns the configured discovery excludes, falling back
// to the parser defaults.
func ignoreGlobs(cfg *config.Config) []string {
	if len(cfg.Library.IgnoreGlobs) > 0 {
		return cfg.Library.IgnoreGlobs
	}
	return parser.DefaultIgnoreGlobs
}

// Skills returns all skills sorted by name.
func (l *Library) Skills() []model.Skill {
	return l.skills
}

// Get returns the skill with the given name, ignoring case.
func (l *Library) Get(name string) (model.Skill, error) {
	if skill, ok := l.byName[nameKey(name)]; ok {
		return skill, nil
	}
	return model.Skill{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Has reports whether a skill with the given name exists.
func (l *Library) Has(name string) bool {
	_, ok := l.byName[nameKey(name)]
	return ok
}

// BySource returns the skills that won merge for the given source,
// sorted by name.
func (l *Library) BySource(source model.Source) []model.Skill {
	var result []model.Skill
	for _, skill := range l.skills {
		if skill.Source == source {
			result = append(result, skill)
		}
	}
	return result
}

// ByKind returns skills of the given kind, sorted by name.
func (l *Library) ByKind(kind model.Kind) []model.Skill {
	var result []model.Skill
	for _, skill := range l.skills {
		if skill.Kind == kind {
			result = append(result, skill)
		}
	}
	return result
}

// Len returns the number of skills after merging.
func (l *Library) Len() int {
	return len(l.skills)
}

// Roots returns the search roots this library was loaded from. Nil for
// libraries built directly with New.
func (l *Library) Roots() []Root {
	return l.roots
}

// nameKey normalizes a skill name for merge and lookup.
func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
