package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/devskills/skillkit/internal/model"
	"github.com/devskills/skillkit/internal/template"
	"github.com/devskills/skillkit/internal/ui"
)

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "new",
		Usage: "Scaffold a new skill",
		UsageText: `skillkit new <name> [options]
   skillkit new docker-compose --description "Compose cheat sheet"
   skillkit new release-helper --kind tool --dir skills/
   skillkit new api-style --keyword rest --keyword http`,
		Description: `Create a skill directory with a SKILL.md scaffold. Tool skills
   also get a scripts/ directory with an executable starter script.

   The skill is created under --dir, which defaults to the current
   directory. Existing skills are never overwritten unless --force
   is given.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "kind",
				Aliases: []string{"k"},
				Usage:   "Skill kind: reference or tool",
				Value:   "reference",
			},
			&cli.StringFlag{
				Name:    "description",
				Aliases: []string{"d"},
				Usage:   "One-line description stored in the frontmatter",
			},
			&cli.StringSliceFlag{
				Name:  "keyword",
				Usage: "Keyword for search and discovery (repeatable)",
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Directory to create the skill in",
				Value: ".",
			},
			&cli.StringFlag{
				Name:  "template",
				Usage: "Path to a custom scaffold template",
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Overwrite an existing skill with the same name",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() < 1 {
				return errors.New("skill name is required")
			}
			return runNew(cmd, args.Get(0))
		},
	}
}

func runNew(cmd *cli.Command, name string) error {
	kind, err := model.ParseKind(cmd.String("kind"))
	if err != nil {
		return fmt.Errorf("invalid kind: %w", err)
	}

	generator, err := template.New()
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	if custom := cmd.String("template"); custom != "" {
		if err := generator.LoadCustomTemplate(kind, custom); err != nil {
			return fmt.Errorf("failed to load custom template: %w", err)
		}
	}

	data := template.TemplateData{
		Name:        name,
		Description: cmd.String("description"),
		Keywords:    cmd.StringSlice("keyword"),
	}

	path, err := generator.Scaffold(cmd.String("dir"), kind, data, cmd.Bool("force"))
	if err != nil {
		return err
	}

	fmt.Println(ui.StatusSuccess("created " + path))
	if kind == model.KindTool {
		fmt.Printf("  starter script: %s\n", ui.Dim("scripts/run.sh"))
	}
	fmt.Printf("  next: edit the description, then run %s\n", ui.Bold("skillkit lint "+path))
	return nil
}
