package install

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/devskills/skillkit/internal/backup"
	"github.com/devskills/skillkit/internal/logging"
	"github.com/devskills/skillkit/internal/model"
)

// Options configures install behavior.
type Options struct {
	// TargetDir is the skill root directory to install into.
	TargetDir string

	// OnConflict defines how to handle existing skills (default: skip).
	OnConflict OnConflict

	// DryRun enables preview mode without making actual changes.
	DryRun bool

	// AutoBackup backs up existing skills before they are replaced.
	AutoBackup bool

	// BackupDir overrides the default backup directory.
	BackupDir string

	// BuiltinFS provides file content for skills with a builtin source.
	BuiltinFS fs.FS
}

// DefaultOptions returns the default install options.
func DefaultOptions() Options {
	return Options{
		OnConflict: OnConflictSkip,
		AutoBackup: true,
	}
}

// Installer copies skills into a target root.
type Installer struct {
	opts    Options
	backups *backup.Manager
}

// New creates a new Installer.
func New(opts Options) *Installer {
	if opts.OnConflict == "" {
		opts.OnConflict = OnConflictSkip
	}
	return &Installer{
		opts:    opts,
		backups: backup.NewManager(opts.BackupDir),
	}
}

// Install copies the given skills into the target root.
// When opts.DryRun is true, returns a preview of changes without modifying files.
func (i *Installer) Install(skills []model.Skill) (*Result, error) {
	defer logging.Timer("install")()

	logging.Debug("starting install operation",
		logging.Operation("install"),
		logging.Path(i.opts.TargetDir),
		slog.String("on_conflict", string(i.opts.OnConflict)),
		slog.Bool("dry_run", i.opts.DryRun),
		logging.Count(len(skills)),
	)

	result := &Result{
		TargetDir:  i.opts.TargetDir,
		OnConflict: i.opts.OnConflict,
		DryRun:     i.opts.DryRun,
		Skills:     make([]SkillResult, 0),
	}

	if i.opts.TargetDir == "" {
		return result, fmt.Errorf("no target directory specified")
	}

	if len(skills) == 0 {
		logging.Debug("no skills to install")
		return result, nil
	}

	// Ensure target directory exists (unless dry run)
	if !i.opts.DryRun {
		if err := os.MkdirAll(i.opts.TargetDir, 0o750); err != nil {
			logging.Error("failed to create target directory",
				logging.Path(i.opts.TargetDir),
				logging.Err(err),
			)
			return result, fmt.Errorf("failed to create target directory: %w", err)
		}
	}

	for _, skill := range skills {
		skillResult := i.processSkill(skill)
		result.Skills = append(result.Skills, skillResult)
	}

	logging.Debug("install operation completed",
		logging.Path(i.opts.TargetDir),
		logging.Count(len(result.Skills)),
	)

	return result, nil
}

// processSkill handles installing a single skill.
func (i *Installer) processSkill(skill model.Skill) SkillResult {
	logging.Debug("processing skill",
		logging.Skill(skill.Name),
		logging.Source(string(skill.Source)),
	)

	result := SkillResult{
		Skill: skill,
	}

	dirTarget := filepath.Join(i.opts.TargetDir, skill.Name)
	fileTarget := dirTarget + ".md"

	// The target path mirrors the source form: directory skills keep their
	// directory, standalone documents stay a single file.
	if skill.HasDirectory() {
		result.TargetPath = dirTarget
	} else {
		result.TargetPath = fileTarget
	}

	existingPath, exists := existingSkillPath(dirTarget, fileTarget)

	if exists && i.opts.OnConflict == OnConflictSkip {
		result.Action = ActionSkipped
		result.Message = "skill already exists"
		return result
	}

	if i.opts.DryRun {
		if exists {
			result.Action = ActionUpdated
			result.Message = "would replace existing skill"
		} else {
			result.Action = ActionInstalled
			result.Message = "would install new skill"
		}
		return result
	}

	if exists {
		if i.shouldBackup() {
			backupID, err := i.backupExisting(skill.Name, existingPath)
			if err != nil {
				result.Action = ActionFailed
				result.Error = fmt.Errorf("backup failed: %w", err)
				return result
			}
			result.BackupID = backupID
		}

		// Remove both forms so a form change doesn't leave a stale copy
		for _, p := range []string{dirTarget, fileTarget} {
			if err := removeExisting(p); err != nil {
				result.Action = ActionFailed
				result.Error = err
				return result
			}
		}
	}

	if err := i.writeSkill(skill, dirTarget, fileTarget); err != nil {
		logging.Error("failed to write skill",
			logging.Skill(skill.Name),
			logging.Path(result.TargetPath),
			logging.Err(err),
		)
		result.Action = ActionFailed
		result.Error = err
		return result
	}

	if exists {
		result.Action = ActionUpdated
		result.Message = "replaced existing skill"
	} else {
		result.Action = ActionInstalled
		result.Message = "new skill"
	}

	logging.Debug("wrote skill",
		logging.Skill(skill.Name),
		logging.Path(result.TargetPath),
	)

	return result
}

// writeSkill copies the skill's files to the target.
func (i *Installer) writeSkill(skill model.Skill, dirTarget, fileTarget string) error {
	if skill.Source == model.SourceBuiltin {
		if i.opts.BuiltinFS == nil {
			return fmt.Errorf("no embedded library available for builtin skill %q", skill.Name)
		}
		if skill.HasDirectory() {
			return copyFSDir(i.opts.BuiltinFS, skill.Dir, dirTarget)
		}
		content, err := fs.ReadFile(i.opts.BuiltinFS, skill.Path)
		if err != nil {
			return fmt.Errorf("failed to read embedded skill %q: %w", skill.Name, err)
		}
		// #nosec G306 - skill files should be readable
		return os.WriteFile(fileTarget, content, 0o644)
	}

	if skill.HasDirectory() {
		return copyDir(skill.Dir, dirTarget)
	}
	return copyFile(skill.Path, fileTarget)
}

// shouldBackup reports whether existing skills are preserved before replacement.
func (i *Installer) shouldBackup() bool {
	return i.opts.OnConflict == OnConflictBackup || i.opts.AutoBackup
}

// backupExisting backs up the file or directory at path.
// Returns the ID of the first backup created.
func (i *Installer) backupExisting(name, path string) (string, error) {
	opts := backup.Options{
		Skill:       name,
		Description: "pre-install backup",
		Tags:        []string{"install"},
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat %q: %w", path, err)
	}

	if info.IsDir() {
		metas, err := i.backups.CreateDir(path, opts)
		if err != nil {
			return "", err
		}
		if len(metas) == 0 {
			return "", nil
		}
		return metas[0].ID, nil
	}

	meta, err := i.backups.Create(path, opts)
	if err != nil {
		return "", err
	}
	return meta.ID, nil
}

// Uninstall removes a skill from its root directory.
// The skill must come from a writable source; builtin skills cannot be removed.
func (i *Installer) Uninstall(skill model.Skill) (*SkillResult, error) {
	result := &SkillResult{
		Skill: skill,
	}

	if skill.Source == model.SourceBuiltin {
		result.Action = ActionFailed
		result.Error = fmt.Errorf("builtin skill %q cannot be removed", skill.Name)
		return result, result.Error
	}

	target := skill.Path
	if skill.HasDirectory() {
		target = skill.Dir
	}
	result.TargetPath = target

	if i.opts.DryRun {
		result.Action = ActionRemoved
		result.Message = "would remove skill"
		return result, nil
	}

	if i.shouldBackup() {
		backupID, err := i.backupExisting(skill.Name, target)
		if err != nil {
			result.Action = ActionFailed
			result.Error = fmt.Errorf("backup failed: %w", err)
			return result, result.Error
		}
		result.BackupID = backupID
	}

	if err := removeExisting(target); err != nil {
		result.Action = ActionFailed
		result.Error = err
		return result, err
	}

	logging.Debug("removed skill",
		logging.Skill(skill.Name),
		logging.Path(target),
	)

	result.Action = ActionRemoved
	result.Message = "skill removed"
	return result, nil
}

// existingSkillPath reports whether a skill already occupies either target form.
func existingSkillPath(dirTarget, fileTarget string) (string, bool) {
	if _, err := os.Stat(dirTarget); err == nil {
		return dirTarget, true
	}
	if _, err := os.Stat(fileTarget); err == nil {
		return fileTarget, true
	}
	return "", false
}
