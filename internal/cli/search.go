package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/devskills/skillkit/internal/library"
	"github.com/devskills/skillkit/internal/ui"
)

// allThreshold admits every nonzero match when --all is set.
const allThreshold = 0.01

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search skills by name, description, and keywords",
		UsageText: `skillkit search <query> [options]
   skillkit search docker
   skillkit search "git hooks" --limit 5
   skillkit search container --json`,
		Description: `Rank skills against the query and print the best matches.

   Matching is fuzzy: exact and prefix name matches rank highest,
   followed by keyword and description hits. Results below the match
   threshold are hidden unless --all is given.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of results (0 = no limit)",
				Value:   10,
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Include weak matches normally filtered out",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output as JSON",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() < 1 {
				return errors.New("search query is required")
			}
			query := strings.Join(args.Slice(), " ")
			return runSearch(ctx, cmd, query)
		},
	}
}

func runSearch(ctx context.Context, cmd *cli.Command, query string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	lib, err := loadLibrary(ctx, cmd, cfg)
	if err != nil {
		return err
	}

	opts := library.DefaultSearchOptions()
	opts.Limit = cmd.Int("limit")
	if cmd.Bool("all") {
		opts.Threshold = allThreshold
	}

	matches := lib.Search(query, opts)

	if cmd.Bool("json") {
		return outputAnyJSON(matches)
	}

	if len(matches) == 0 {
		fmt.Printf("No skills match %q.\n", query)
		return nil
	}

	for _, m := range matches {
		desc := m.Skill.Description
		if len(desc) > 60 {
			desc = desc[:57] + "..."
		}
		fmt.Printf("%3.0f%%  %-25s %s\n", m.Score*100, ui.Bold(m.Skill.Name), desc)
		if len(m.Reasons) > 0 {
			fmt.Printf("      %s\n", ui.Dim(strings.Join(m.Reasons, ", ")))
		}
	}

	fmt.Printf("\n%d match(es) for %q\n", len(matches), query)
	return nil
}
