package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/devskills/skillkit/internal/config"
	"github.com/devskills/skillkit/internal/lint"
	"github.com/devskills/skillkit/internal/ui"
)

func lintCommand() *cli.Command {
	return &cli.Command{
		Name:  "lint",
		Usage: "Check skill documents for hygiene problems",
		UsageText: `skillkit lint [path...] [options]
   skillkit lint
   skillkit lint skills/ --strict
   skillkit lint skills/docker.md --format json
   skillkit lint skills/ --watch`,
		Description: `Lint skill files for missing frontmatter, bad names, overlong
   descriptions, broken references, and similar problems. Directories
   are expanded with the standard skill discovery rules.

   Without arguments the current directory is linted. The command
   exits nonzero when errors are found, or when warnings are found
   under --strict.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Treat warnings as failures",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text or json",
				Value:   "text",
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Re-lint whenever a watched skill file changes",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			paths := cmd.Args().Slice()
			if len(paths) == 0 {
				paths = []string{"."}
			}
			return runLint(ctx, cmd, paths)
		},
	}
}

func runLint(ctx context.Context, cmd *cli.Command, paths []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	format := cmd.String("format")
	if format != "text" && format != "json" {
		return fmt.Errorf("unsupported format: %s", format)
	}

	strict := cmd.Bool("strict") || cfg.Lint.Strict

	opts := lint.Options{Known: knownSkillNames(ctx, cmd, cfg)}
	linter := lint.New(cfg)

	if cmd.Bool("watch") {
		return runLintWatch(ctx, linter, paths, opts, format, strict)
	}

	result, err := linter.LintPaths(ctx, paths, opts)
	if err != nil {
		return err
	}

	if err := outputLintResult(result, format); err != nil {
		return err
	}

	if result.Failed(strict) {
		return fmt.Errorf("lint failed: %s", result.Summary())
	}
	return nil
}

// runLintWatch lints continuously until interrupted. Each pass reports
// through the same formatter as a single run.
func runLintWatch(ctx context.Context, linter *lint.Linter, paths []string, opts lint.Options, format string, strict bool) error {
	watchOpts := lint.WatchOptions{
		Options: opts,
		OnResult: func(result *lint.Result) {
			if err := outputLintResult(result, format); err != nil {
				fmt.Fprintf(os.Stderr, "output error: %v\n", err)
				return
			}
			if result.Failed(strict) {
				fmt.Println(ui.Warning("watching for changes (last pass failed)..."))
			} else {
				fmt.Println(ui.Dim("watching for changes..."))
			}
		},
	}
	return linter.Watch(ctx, paths, watchOpts)
}

func outputLintResult(result *lint.Result, format string) error {
	if format == "json" {
		return outputAnyJSON(result)
	}
	fmt.Print(lint.FormatText(result))
	return nil
}

// knownSkillNames collects library skill names so requires references
// to installed skills do not trip the unknown-requires rule. Lint still
// works when the library cannot be loaded.
func knownSkillNames(ctx context.Context, cmd *cli.Command, cfg *config.Config) []string {
	lib, err := loadLibrary(ctx, cmd, cfg)
	if err != nil {
		return nil
	}
	names := make([]string, 0, lib.Len())
	for _, s := range lib.Skills() {
		names = append(names, s.Name)
	}
	return names
}
