package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/devskills/skillkit/internal/similarity"
	"github.com/devskills/skillkit/internal/ui"
)

func dupesCommand() *cli.Command {
	return &cli.Command{
		Name:  "dupes",
		Usage: "Find near-duplicate skills across the library",
		UsageText: `skillkit dupes [options]
   skillkit dupes
   skillkit dupes --threshold 0.8
   skillkit dupes --json`,
		Description: `Compare every pair of skills by name and body similarity and
   report the pairs that look like duplicates. Name similarity uses
   normalized edit distance; body similarity compares token sets.

   A pair is reported when either score crosses its threshold. Use
   --threshold to raise or lower both at once.`,
		Flags: []cli.Flag{
			&cli.Float64Flag{
				Name:    "threshold",
				Aliases: []string{"t"},
				Usage:   "Override both similarity thresholds (0.0-1.0)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output as JSON",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runDupes(ctx, cmd)
		},
	}
}

// dupeOutput represents the JSON output structure for one pair.
type dupeOutput struct {
	Skill1       string  `json:"skill1"`
	Source1      string  `json:"source1"`
	Skill2       string  `json:"skill2"`
	Source2      string  `json:"source2"`
	NameScore    float64 `json:"name_score"`
	ContentScore float64 `json:"content_score"`
}

func runDupes(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	lib, err := loadLibrary(ctx, cmd, cfg)
	if err != nil {
		return err
	}

	detectorCfg := similarity.DetectorConfig{
		NameThreshold:    cfg.Similarity.NameThreshold,
		ContentThreshold: cfg.Similarity.ContentThreshold,
		Algorithm:        cfg.Similarity.Algorithm,
	}
	if t := cmd.Float64("threshold"); t > 0 {
		detectorCfg.NameThreshold = t
		detectorCfg.ContentThreshold = t
	}

	detector := similarity.NewDetector(detectorCfg)
	dupes := detector.FindDuplicates(lib.Skills())

	if cmd.Bool("json") {
		outputs := make([]dupeOutput, len(dupes))
		for i, d := range dupes {
			outputs[i] = dupeOutput{
				Skill1:       d.Skill1.Name,
				Source1:      d.Skill1.Source.String(),
				Skill2:       d.Skill2.Name,
				Source2:      d.Skill2.Source.String(),
				NameScore:    d.NameScore,
				ContentScore: d.ContentScore,
			}
		}
		return outputAnyJSON(outputs)
	}

	if len(dupes) == 0 {
		fmt.Println("No near-duplicate skills found.")
		return nil
	}

	for _, d := range dupes {
		fmt.Printf("%s %s (%s) ~ %s (%s)\n",
			ui.Warning(ui.SymbolWarning),
			ui.Bold(d.Skill1.Name), d.Skill1.Source,
			ui.Bold(d.Skill2.Name), d.Skill2.Source)
		fmt.Printf("  name similarity %.2f, content similarity %.2f\n", d.NameScore, d.ContentScore)
	}

	fmt.Printf("\n%d duplicate pair(s) found\n", len(dupes))
	return nil
}
