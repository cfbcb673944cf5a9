package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/devskills/skillkit/internal/model"
	"github.com/devskills/skillkit/internal/render"
	"github.com/devskills/skillkit/internal/skills"
	"github.com/devskills/skillkit/internal/ui"
)

func showCommand() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Display a skill document",
		UsageText: `skillkit show <name> [options]
   skillkit show docker-compose
   skillkit show git-hooks --raw > git-hooks.md`,
		Description: `Print a skill by name. On a terminal the Markdown body is
   rendered with styling; elsewhere, and with --raw, the document is
   printed verbatim so it can be piped or redirected.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "Print the raw Markdown without rendering",
			},
			&cli.BoolFlag{
				Name:  "refs",
				Usage: "List the skill's supporting files instead of its body",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() < 1 {
				return errors.New("skill name is required")
			}
			return runShow(ctx, cmd, args.Get(0))
		},
	}
}

func runShow(ctx context.Context, cmd *cli.Command, name string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	lib, err := loadLibrary(ctx, cmd, cfg)
	if err != nil {
		return err
	}

	skill, err := lib.Get(name)
	if err != nil {
		return fmt.Errorf("skill %q not found (try 'skillkit search %s')", name, name)
	}

	if cmd.Bool("refs") {
		outputSkillRefs(skill)
		return nil
	}

	if cmd.Bool("raw") {
		raw, err := rawSkillDocument(skill)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", skill.Path, err)
		}
		_, err = os.Stdout.Write(raw)
		return err
	}

	if !render.IsTTY() {
		fmt.Print(skill.Content)
		if !strings.HasSuffix(skill.Content, "\n") {
			fmt.Println()
		}
		return nil
	}

	outputSkillHeader(skill)
	r := render.New(render.Options{Width: render.TerminalWidth()})
	fmt.Print(r.Render(skill.Content))
	return nil
}

// rawSkillDocument returns the document as stored, frontmatter
// included. Builtin skills come from the embedded tree.
func rawSkillDocument(skill model.Skill) ([]byte, error) {
	if skill.Source == model.SourceBuiltin {
		return fs.ReadFile(skills.FS(), skill.Path)
	}
	return os.ReadFile(skill.Path) // #nosec G304 - path comes from the loaded library
}

func outputSkillHeader(skill model.Skill) {
	fmt.Printf("%s  %s\n", ui.Bold(skill.Name), ui.Dim(fmt.Sprintf("(%s, %s)", skill.Source, skill.Kind)))
	if len(skill.Keywords) > 0 {
		fmt.Printf("%s\n", ui.Dim("keywords: "+strings.Join(skill.Keywords, ", ")))
	}
	fmt.Println()
}

func outputSkillRefs(skill model.Skill) {
	sections := []struct {
		label string
		files []string
	}{
		{"References", skill.References},
		{"Scripts", skill.Scripts},
		{"Assets", skill.Assets},
	}

	total := 0
	for _, sec := range sections {
		if len(sec.files) == 0 {
			continue
		}
		fmt.Printf("%s:\n", ui.Bold(sec.label))
		for _, f := range sec.files {
			fmt.Printf("  %s\n", f)
			total++
		}
	}

	if total == 0 {
		fmt.Printf("%s has no supporting files.\n", skill.Name)
		return
	}
	if skill.Dir != "" {
		fmt.Printf("\nPaths are relative to %s\n", skill.Dir)
	}
}
