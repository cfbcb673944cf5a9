package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/devskills/skillkit/internal/render"
	"github.com/devskills/skillkit/internal/ui/tui"
)

func browseCommand() *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "Browse the skill library interactively",
		Description: `Open a full-screen browser over the library. Skills can be
   filtered as you type, previewed in place, and printed or located
   on exit.

   Keys: / filters, enter previews, o prints the skill after exit,
   c prints its path, q quits.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runBrowse(ctx, cmd)
		},
	}
}

func runBrowse(ctx context.Context, cmd *cli.Command) error {
	if !render.IsTTY() {
		return errors.New("browse requires an interactive terminal")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	lib, err := loadLibrary(ctx, cmd, cfg)
	if err != nil {
		return err
	}

	if lib.Len() == 0 {
		fmt.Println("No skills in the library.")
		return nil
	}

	result, err := tui.RunBrowse(lib.Skills())
	if err != nil {
		return fmt.Errorf("browse failed: %w", err)
	}

	switch result.Action {
	case tui.BrowseActionShow:
		outputSkillHeader(result.Skill)
		r := render.New(render.Options{Width: render.TerminalWidth()})
		fmt.Print(r.Render(result.Skill.Content))
	case tui.BrowseActionPath:
		fmt.Println(result.Skill.Path)
	}
	return nil
}
