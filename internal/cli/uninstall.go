package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/devskills/skillkit/internal/install"
	"github.com/devskills/skillkit/internal/model"
	"github.com/devskills/skillkit/internal/parser"
	"github.com/devskills/skillkit/internal/ui"
	"github.com/devskills/skillkit/internal/util"
)

func uninstallCommand() *cli.Command {
	return &cli.Command{
		Name:    "uninstall",
		Aliases: []string{"rm"},
		Usage:   "Remove an installed skill",
		UsageText: `skillkit uninstall <name> [options]
   skillkit uninstall docker-compose
   skillkit uninstall git-hooks --from project
   skillkit uninstall nginx --from ./team-skills --keep-backup=false`,
		Description: `Remove a skill from a skill root. Builtin skills cannot be
   removed; install a copy and edit that instead.

   A backup of the removed skill is kept by default so the removal
   can be undone with 'skillkit backups'.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "from",
				Usage: "Root to remove from: user, project, or a directory path",
				Value: "user",
			},
			&cli.BoolFlag{
				Name:  "keep-backup",
				Usage: "Keep a backup of the removed skill",
				Value: true,
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
				return errors.New("skill name is required")
			}
			return runUninstall(cmd, args.Get(0))
		},
	}
}

func runUninstall(cmd *cli.Command, name string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	rootDir, err := resolveTargetDir(cmd.String("from"))
	if err != nil {
		return err
	}

	skill, err := findSkillInRoot(rootDir, name)
	if err != nil {
		return err
	}

	installer := install.New(install.Options{
		TargetDir:  rootDir,
		DryRun:     cmd.Bool("dry-run"),
		AutoBackup: cmd.Bool("keep-backup"),
		BackupDir:  util.ExpandPath(cfg.Backup.Location, ""),
	})

	result, err := installer.Uninstall(skill)
	if err != nil {
		return err
	}

	switch {
	case result.Action == install.ActionRemoved && cmd.Bool("dry-run"):
		fmt.Println(ui.StatusSkipped(fmt.Sprintf("would remove %s from %s", name, result.TargetPath)))
	case result.Action == install.ActionRemoved:
		msg := fmt.Sprintf("removed %s from %s", name, result.TargetPath)
		if result.BackupID != "" {
			msg += ui.Dim(" (backup " + result.BackupID + ")")
		}
		fmt.Println(ui.StatusSuccess(msg))
	default:
		fmt.Println(ui.StatusError(fmt.Sprintf("%s: %s", name, result.Message)))
	}
	return nil
}

// findSkillInRoot locates a named skill inside a single root directory.
func findSkillInRoot(rootDir, name string) (model.Skill, error) {
	files, err := parser.Discover(rootDir)
	if err != nil {
		return model.Skill{}, fmt.Errorf("failed to scan %s: %w", rootDir, err)
	}

	for _, file := range files {
		skill, err := parser.ParseSkillFile(file)
		if err != nil {
			continue
		}
		if skill.Name == name {
			return skill, nil
		}
	}
	return model.Skill{}, fmt.Errorf("skill %q not found in %s", name, rootDir)
}
