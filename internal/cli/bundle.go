package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/devskills/skillkit/internal/archive"
	"github.com/devskills/skillkit/internal/model"
	"github.com/devskills/skillkit/internal/ui"
)

// bundleDateLayout is the accepted format for --since and --before.
const bundleDateLayout = "2006-01-02"

func bundleCommand() *cli.Command {
	return &cli.Command{
		Name:  "bundle",
		Usage: "Pack skills into an archive or unpack one",
		UsageText: `skillkit bundle <subcommand> [options]
   skillkit bundle create -o team-skills.tar.gz --source project
   skillkit bundle extract team-skills.tar.gz --to user`,
		Description: `Bundles are tar.gz archives with a manifest, suitable for
   sharing a skill set through artifacts, releases, or plain files.

   Subcommands:
     create   - Pack library skills into a bundle
     extract  - Unpack a bundle into a skill root`,
		Commands: []*cli.Command{
			bundleCreateCommand(),
			bundleExtractCommand(),
		},
	}
}

func bundleCreateCommand() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Pack skills into a bundle",
		UsageText: `skillkit bundle create [options]
   skillkit bundle create -o skills.tar.gz
   skillkit bundle create --kind tool --name docker-compose -o tools.tar.gz
   skillkit bundle create --since 2026-01-01`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Bundle file to write",
				Value:   "skills.tar.gz",
			},
			&cli.StringFlag{
				Name:    "source",
				Aliases: []string{"s"},
				Usage:   "Only bundle skills from this source",
			},
			&cli.StringFlag{
				Name:    "kind",
				Aliases: []string{"k"},
				Usage:   "Only bundle skills of this kind",
			},
			&cli.StringSliceFlag{
				Name:  "name",
				Usage: "Only bundle the named skill (repeatable)",
			},
			&cli.StringFlag{
				Name:  "since",
				Usage: "Only bundle skills modified on or after this date (YYYY-MM-DD)",
			},
			&cli.StringFlag{
				Name:  "before",
				Usage: "Only bundle skills modified before this date (YYYY-MM-DD)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runBundleCreate(ctx, cmd)
		},
	}
}

func bundleExtractCommand() *cli.Command {
	return &cli.Command{
		Name:  "extract",
		Usage: "Unpack a bundle into a skill root",
		UsageText: `skillkit bundle extract <bundle> [options]
   skillkit bundle extract skills.tar.gz
   skillkit bundle extract skills.tar.gz --to project
   skillkit bundle extract skills.tar.gz --to ./team-skills --name nginx`,
		Description: `Unpack bundled skills. Without --to the bundle contents are
   listed and nothing is written.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "to",
				Usage: "Target root: user, project, or a directory path",
			},
			&cli.StringFlag{
				Name:    "kind",
				Aliases: []string{"k"},
				Usage:   "Only extract skills of this kind",
			},
			&cli.StringSliceFlag{
				Name:  "name",
				Usage: "Only extract the named skill (repeatable)",
			},
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"d"},
				Usage:   "Preview without writing files",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() < 1 {
				return errors.New("bundle file is required")
			}
			return runBundleExtract(ctx, cmd, args.Get(0))
		},
	}
}

func runBundleCreate(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	lib, err := loadLibrary(ctx, cmd, cfg)
	if err != nil {
		return err
	}

	opts := archive.CreateOptions{Names: cmd.StringSlice("name")}

	if v := cmd.String("source"); v != "" {
		source, err := model.ParseSource(v)
		if err != nil {
			return fmt.Errorf("invalid source: %w", err)
		}
		opts.Source = source
	}
	if v := cmd.String("kind"); v != "" {
		kind, err := model.ParseKind(v)
		if err != nil {
			return fmt.Errorf("invalid kind: %w", err)
		}
		opts.Kind = kind
	}
	if v := cmd.String("since"); v != "" {
		t, err := time.Parse(bundleDateLayout, v)
		if err != nil {
			return fmt.Errorf("invalid --since date %q (want YYYY-MM-DD)", v)
		}
		opts.Since = t
	}
	if v := cmd.String("before"); v != "" {
		t, err := time.Parse(bundleDateLayout, v)
		if err != nil {
			return fmt.Errorf("invalid --before date %q (want YYYY-MM-DD)", v)
		}
		opts.Before = t
	}

	output := cmd.String("output")
	f, err := os.Create(output) // #nosec G304 - user-chosen output path
	if err != nil {
		return fmt.Errorf("failed to create bundle file: %w", err)
	}
	defer func() { _ = f.Close() }()

	manifest, err := archive.Create(lib.Skills(), f, opts)
	if err != nil {
		_ = os.Remove(output)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to finish bundle file: %w", err)
	}

	fmt.Println(ui.StatusSuccess(fmt.Sprintf("bundled %d skill(s) into %s", manifest.SkillCount, output)))
	return nil
}

func runBundleExtract(ctx context.Context, cmd *cli.Command, bundlePath string) error {
	opts := archive.ExtractOptions{
		Names:  cmd.StringSlice("name"),
		DryRun: cmd.Bool("dry-run"),
	}

	if v := cmd.String("kind"); v != "" {
		kind, err := model.ParseKind(v)
		if err != nil {
			return fmt.Errorf("invalid kind: %w", err)
		}
		opts.Kind = kind
	}

	listOnly := cmd.String("to") == ""
	if !listOnly {
		targetDir, err := resolveTargetDir(cmd.String("to"))
		if err != nil {
			return err
		}
		opts.TargetDir = targetDir
	}

	f, err := os.Open(bundlePath) // #nosec G304 - user-chosen bundle path
	if err != nil {
		return fmt.Errorf("failed to open bundle: %w", err)
	}
	defer func() { _ = f.Close() }()

	extracted, manifest, err := archive.Extract(f, opts)
	if err != nil {
		return err
	}

	switch {
	case listOnly:
		fmt.Printf("Bundle created %s with %d skill(s):\n", manifest.CreatedAt.Format(bundleDateLayout), manifest.SkillCount)
		for _, entry := range manifest.Skills {
			fmt.Printf("  %-25s %-10s %s\n", entry.Name, entry.Kind, formatBytes(entry.Size))
		}
	case opts.DryRun:
		for _, s := range extracted {
			fmt.Println(ui.StatusSkipped("would extract " + s.Name))
		}
	default:
		for _, s := range extracted {
			fmt.Println(ui.StatusSuccess("extracted " + s.Name))
		}
		fmt.Printf("\n%d skill(s) extracted into %s\n", len(extracted), opts.TargetDir)
	}
	return nil
}
