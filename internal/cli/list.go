package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/devskills/skillkit/internal/detector"
	"github.com/devskills/skillkit/internal/model"
)

func listCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List skills in the library",
		UsageText: `skillkit list [options]
   skillkit list --source user
   skillkit list --kind tool --json`,
		Description: `List every skill visible from the current directory.

   Skills are gathered from three tiers in precedence order: builtin
   skills shipped with skillkit, user skills under ~/.skillkit/skills,
   and project skills under the nearest repository root. A project
   skill shadows a user or builtin skill with the same name.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "source",
				Aliases: []string{"s"},
				Usage:   "Only list skills from this source (builtin, user, project)",
			},
			&cli.StringFlag{
				Name:    "kind",
				Aliases: []string{"k"},
				Usage:   "Only list skills of this kind (reference, tool)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output as JSON",
			},
			&cli.BoolFlag{
				Name:  "sources",
				Usage: "List detected skill roots instead of skills",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runList(ctx, cmd)
		},
	}
}

// skillListing is the JSON output shape for a single listed skill.
// Content is omitted to keep listings readable.
type skillListing struct {
	Name        string    `json:"name"`
	Kind        string    `json:"kind"`
	Source      string    `json:"source"`
	Description string    `json:"description"`
	Keywords    []string  `json:"keywords,omitempty"`
	Path        string    `json:"path,omitempty"`
	ModifiedAt  time.Time `json:"modified_at,omitempty"`
}

func runList(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("sources") {
		return runListSources(cmd)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sources, err := sourceFilter(cmd.String("source"))
	if err != nil {
		return err
	}

	lib, err := loadLibrary(ctx, cmd, cfg, sources...)
	if err != nil {
		return err
	}

	skills := lib.Skills()
	if kindStr := cmd.String("kind"); kindStr != "" {
		kind, err := model.ParseKind(kindStr)
		if err != nil {
			return fmt.Errorf("invalid kind: %w", err)
		}
		skills = lib.ByKind(kind)
	}

	if cmd.Bool("json") {
		return outputListJSON(skills)
	}
	outputListTable(skills)
	return nil
}

func outputListJSON(skills []model.Skill) error {
	listings := make([]skillListing, len(skills))
	for i, s := range skills {
		listings[i] = skillListing{
			Name:        s.Name,
			Kind:        s.Kind.String(),
			Source:      s.Source.String(),
			Description: s.Description,
			Keywords:    s.Keywords,
			Path:        s.Path,
			ModifiedAt:  s.ModifiedAt,
		}
	}
	return outputAnyJSON(listings)
}

// rootListing is the JSON output shape for a detected skill root.
type rootListing struct {
	Source     string  `json:"source"`
	Path       string  `json:"path,omitempty"`
	Origin     string  `json:"origin"`
	Confidence float64 `json:"confidence"`
}

// runListSources reports where skills would be loaded from without
// loading them.
func runListSources(cmd *cli.Command) error {
	roots := detector.DetectAll("")

	if cmd.Bool("json") {
		listings := make([]rootListing, len(roots))
		for i, r := range roots {
			listings[i] = rootListing{
				Source:     r.Source.String(),
				Path:       r.Path,
				Origin:     r.Origin,
				Confidence: r.Confidence,
			}
		}
		return outputAnyJSON(listings)
	}

	fmt.Printf("%-8s %-15s %-10s %s\n", "SOURCE", "ORIGIN", "CONFIDENCE", "PATH")
	fmt.Printf("%-8s %-15s %-10s %s\n", "------", "------", "----------", "----")
	for _, r := range roots {
		path := r.Path
		if path == "" {
			path = "(embedded)"
		}
		fmt.Printf("%-8s %-15s %-10.2f %s\n", r.Source, r.Origin, r.Confidence, path)
	}
	fmt.Printf("\nTotal: %d root(s)\n", len(roots))
	return nil
}

func outputListTable(skills []model.Skill) {
	if len(skills) == 0 {
		fmt.Println("No skills found.")
		return
	}

	fmt.Printf("%-25s %-10s %-8s %s\n", "NAME", "KIND", "SOURCE", "DESCRIPTION")
	fmt.Printf("%-25s %-10s %-8s %s\n", "----", "----", "------", "-----------")

	for _, s := range skills {
		name := s.Name
		if len(name) > 25 {
			name = name[:22] + "..."
		}
		desc := s.Description
		if len(desc) > 60 {
			desc = desc[:57] + "..."
		}
		fmt.Printf("%-25s %-10s %-8s %s\n", name, s.Kind, s.Source, desc)
	}

	fmt.Printf("\nTotal: %d skill(s)\n", len(skills))
}
