package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/devskills/skillkit/internal/export"
	"github.com/devskills/skillkit/internal/model"
	"github.com/devskills/skillkit/internal/ui"
)

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the library as JSON, YAML, or Markdown",
		UsageText: `skillkit export [options]
   skillkit export --format json
   skillkit export --format markdown -o SKILLS.md
   skillkit export --source project --metadata`,
		Description: `Write the skill library in a machine-readable format. JSON and
   YAML exports carry the full documents; the Markdown format renders
   a catalog with a summary table, suitable for checking into a repo.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: json, yaml, or markdown",
				Value:   "json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "File to write (default: stdout)",
			},
			&cli.StringFlag{
				Name:    "source",
				Aliases: []string{"s"},
				Usage:   "Only export skills from this source",
			},
			&cli.BoolFlag{
				Name:  "metadata",
				Usage: "Include paths, keywords, and timestamps",
			},
			&cli.BoolFlag{
				Name:  "compact",
				Usage: "Disable pretty-printing for JSON output",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runExport(ctx, cmd)
		},
	}
}

func runExport(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	format, err := export.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	opts := export.Options{
		Format:          format,
		Pretty:          !cmd.Bool("compact"),
		IncludeMetadata: cmd.Bool("metadata"),
	}
	if v := cmd.String("source"); v != "" {
		source, err := model.ParseSource(v)
		if err != nil {
			return fmt.Errorf("invalid source: %w", err)
		}
		opts.Source = source
	}

	lib, err := loadLibrary(ctx, cmd, cfg)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	outputPath := cmd.String("output")
	if outputPath != "" {
		f, err := os.Create(outputPath) // #nosec G304 - user-chosen output path
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if err := export.New(opts).Export(lib.Skills(), w); err != nil {
		return err
	}

	if outputPath != "" {
		count := lib.Len()
		if opts.Source != "" {
			count = len(lib.BySource(opts.Source))
		}
		fmt.Println(ui.StatusSuccess(fmt.Sprintf("exported %d skill(s) to %s", count, outputPath)))
	}
	return nil
}
