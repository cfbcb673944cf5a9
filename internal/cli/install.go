package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/devskills/skillkit/internal/detector"
	"github.com/devskills/skillkit/internal/install"
	"github.com/devskills/skillkit/internal/model"
	"github.com/devskills/skillkit/internal/skills"
	"github.com/devskills/skillkit/internal/ui"
	"github.com/devskills/skillkit/internal/util"
)

func installCommand() *cli.Command {
	return &cli.Command{
		Name:  "install",
		Usage: "Install skills into a skill root",
		UsageText: `skillkit install <name>... [options]
   skillkit install docker-compose
   skillkit install git-hooks --to project
   skillkit install nginx --to ./team-skills --on-conflict overwrite`,
		Description: `Copy one or more skills into a target root. The target is a
   source name (user, project) or a directory path. Builtin skills are
   materialized from the embedded library, so installing one gives you
   an editable copy.

   When a skill already exists at the target, --on-conflict decides
   what happens: skip leaves it alone, overwrite replaces it, and
   backup saves the existing copy before replacing.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "to",
				Usage: "Target root: user, project, or a directory path",
				Value: "user",
			},
			&cli.StringFlag{
				Name:  "on-conflict",
				Usage: "Conflict policy: skip, overwrite, or backup",
			},
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"d"},
				Usage:   "Preview without making changes",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() < 1 {
				return errors.New("at least one skill name is required")
			}
			return runInstall(ctx, cmd, args.Slice())
		},
	}
}

func runInstall(ctx context.Context, cmd *cli.Command, names []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	targetDir, err := resolveTargetDir(cmd.String("to"))
	if err != nil {
		return err
	}

	onConflict := cfg.GetOnConflict()
	if v := cmd.String("on-conflict"); v != "" {
		onConflict = install.OnConflict(v)
		if !onConflict.IsValid() {
			return fmt.Errorf("invalid conflict policy %q (want skip, overwrite, or backup)", v)
		}
	}

	lib, err := loadLibrary(ctx, cmd, cfg)
	if err != nil {
		return err
	}

	var toInstall []model.Skill
	for _, name := range names {
		skill, err := lib.Get(name)
		if err != nil {
			return fmt.Errorf("skill %q not found (try 'skillkit search %s')", name, name)
		}
		toInstall = append(toInstall, skill)
	}

	installer := install.New(install.Options{
		TargetDir:  targetDir,
		OnConflict: onConflict,
		DryRun:     cmd.Bool("dry-run"),
		AutoBackup: cfg.Install.AutoBackup,
		BackupDir:  util.ExpandPath(cfg.Backup.Location, ""),
		BuiltinFS:  skills.FS(),
	})

	result, err := installer.Install(toInstall)
	if err != nil {
		return err
	}

	outputInstallResult(result)

	if !result.Success() {
		return fmt.Errorf("install finished with failures: %s", result.Summary())
	}
	return nil
}

// resolveTargetDir maps a --to/--from value onto a concrete directory.
// Accepts a source name (user, project), a source:path form, or a
// plain path.
func resolveTargetDir(spec string) (string, error) {
	rootSpec, err := model.ParseRootSpec(spec)
	if err != nil {
		return "", fmt.Errorf("invalid target %q: %w", spec, err)
	}
	if err := rootSpec.ValidateAsTarget(); err != nil {
		return "", err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}

	if rootSpec.HasPath() {
		return util.ExpandPath(rootSpec.Path, cwd), nil
	}

	switch rootSpec.Source {
	case model.SourceUser:
		return util.UserSkillsPath(), nil
	case model.SourceProject:
		return util.ProjectSkillsPath(detector.ProjectDir(cwd)), nil
	default:
		return "", fmt.Errorf("cannot install into %q", rootSpec.Source)
	}
}

func outputInstallResult(result *install.Result) {
	if result.DryRun {
		fmt.Println(ui.Bold("Dry run, no changes made:"))
	}

	for _, sr := range result.Skills {
		switch {
		case sr.Error != nil:
			fmt.Println(ui.StatusError(fmt.Sprintf("%s: %v", sr.Skill.Name, sr.Error)))
		case sr.Action == install.ActionSkipped:
			fmt.Println(ui.StatusSkipped(fmt.Sprintf("%s: %s", sr.Skill.Name, sr.Message)))
		default:
			msg := fmt.Sprintf("%s %s", sr.Skill.Name, sr.Action)
			if sr.TargetPath != "" {
				msg += " at " + sr.TargetPath
			}
			if sr.BackupID != "" {
				msg += ui.Dim(" (backup "+sr.BackupID+")")
			}
			fmt.Println(ui.StatusSuccess(msg))
		}
	}

	fmt.Printf("\n%s\n", result.Summary())
}
