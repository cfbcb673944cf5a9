package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/devskills/skillkit/internal/backup"
	"github.com/devskills/skillkit/internal/config"
	"github.com/devskills/skillkit/internal/ui"
	"github.com/devskills/skillkit/internal/util"
)

func backupsCommand() *cli.Command {
	return &cli.Command{
		Name:  "backups",
		Usage: "Inspect and prune install backups",
		UsageText: `skillkit backups <subcommand> [options]
   skillkit backups list
   skillkit backups clean --max 5`,
		Description: `Install, uninstall, and conflict handling keep timestamped
   backups of replaced skills. These subcommands inspect that store
   and prune it.

   Subcommands:
     list   - List stored backups
     clean  - Delete old backups beyond the retention policy`,
		Commands: []*cli.Command{
			backupsListCommand(),
			backupsCleanCommand(),
		},
	}
}

func backupsListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List stored backups",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "skill",
				Aliases: []string{"s"},
				Usage:   "Only list backups of this skill",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output as JSON",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runBackupsList(cmd)
		},
	}
}

func backupsCleanCommand() *cli.Command {
	return &cli.Command{
		Name:  "clean",
		Usage: "Delete old backups beyond the retention policy",
		UsageText: `skillkit backups clean [options]
   skillkit backups clean
   skillkit backups clean --max 5 --max-age 168h
   skillkit backups clean --skill docker-compose --dry-run`,
		Description: `Prune the backup store. The newest backups of every skill are
   kept up to --max per skill, and anything older than --max-age is
   dropped. The most recent backup of each skill always survives.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "max",
				Usage: "Backups to keep per skill (0 = use config)",
			},
			&cli.DurationFlag{
				Name:  "max-age",
				Usage: "Delete backups older than this (0 = use default)",
			},
			&cli.StringFlag{
				Name:    "skill",
				Aliases: []string{"s"},
				Usage:   "Only clean backups of this skill",
			},
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"d"},
				Usage:   "Preview without deleting anything",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runBackupsClean(cmd)
		},
	}
}

// backupListing is the JSON output shape for a stored backup.
type backupListing struct {
	ID        string    `json:"id"`
	Skill     string    `json:"skill"`
	CreatedAt time.Time `json:"created_at"`
	Size      int64     `json:"size_bytes"`
	Tags      []string  `json:"tags,omitempty"`
}

func runBackupsList(cmd *cli.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	manager := backupManager(cfg)
	backups, err := manager.List(cmd.String("skill"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		listings := make([]backupListing, len(backups))
		for i, b := range backups {
			listings[i] = backupListing{
				ID:        b.ID,
				Skill:     b.Skill,
				CreatedAt: b.CreatedAt,
				Size:      b.Size,
				Tags:      b.Tags,
			}
		}
		return outputAnyJSON(listings)
	}

	if len(backups) == 0 {
		fmt.Println("No backups found.")
		return nil
	}

	fmt.Printf("%-34s %-20s %-20s %s\n", "ID", "SKILL", "CREATED", "SIZE")
	fmt.Printf("%-34s %-20s %-20s %s\n", "--", "-----", "-------", "----")

	for _, b := range backups {
		skill := b.Skill
		if len(skill) > 20 {
			skill = skill[:17] + "..."
		}
		fmt.Printf("%-34s %-20s %-20s %s\n",
			b.ID, skill, b.CreatedAt.Format("2006-01-02 15:04:05"), formatBytes(b.Size))
	}

	fmt.Printf("\nTotal: %d backup(s)\n", len(backups))
	return nil
}

func runBackupsClean(cmd *cli.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := backup.DefaultCleanupOptions()
	opts.Skill = cmd.String("skill")
	opts.DryRun = cmd.Bool("dry-run")
	if n := cmd.Int("max"); n > 0 {
		opts.MaxBackups = n
	} else if cfg.Backup.MaxBackups > 0 {
		opts.MaxBackups = cfg.Backup.MaxBackups
	}
	if age := cmd.Duration("max-age"); age > 0 {
		opts.MaxAge = age
	}

	deleted, err := backupManager(cfg).Cleanup(opts)
	if err != nil {
		return err
	}

	if len(deleted) == 0 {
		fmt.Println("Nothing to clean.")
		return nil
	}

	verb := "deleted"
	if opts.DryRun {
		verb = "would delete"
	}
	for _, id := range deleted {
		fmt.Printf("  %s %s\n", verb, id)
	}
	fmt.Println(ui.StatusSuccess(fmt.Sprintf("%s %d backup(s)", verb, len(deleted))))
	return nil
}

// backupManager builds the manager for the configured backup location.
func backupManager(cfg *config.Config) *backup.Manager {
	return backup.NewManager(util.ExpandPath(cfg.Backup.Location, ""))
}
