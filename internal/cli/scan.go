package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/devskills/skillkit/internal/gitscan"
	"github.com/devskills/skillkit/internal/logscan"
	"github.com/devskills/skillkit/internal/scan"
	"github.com/devskills/skillkit/internal/secscan"
)

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "Scan code for secrets and unsafe logging",
		UsageText: `skillkit scan <subcommand> [options]
   skillkit scan secrets .
   skillkit scan history . --depth 200
   skillkit scan logs ./src --format json`,
		Description: `Security scanners for working trees, git history, and logging
   statements. Every scanner reports findings with masked values and
   remediation hints.

   Subcommands:
     secrets  - Find hardcoded credentials in files
     history  - Find secrets in git commit history
     logs     - Find sensitive data flowing into log statements

   The exit code reflects the worst finding: 2 for critical, 1 for
   high, 0 otherwise. That makes the scanners usable as CI gates.`,
		Commands: []*cli.Command{
			scanSecretsCommand(),
			scanHistoryCommand(),
			scanLogsCommand(),
		},
	}
}

func scanSecretsCommand() *cli.Command {
	return &cli.Command{
		Name:  "secrets",
		Usage: "Find hardcoded credentials in files",
		UsageText: `skillkit scan secrets <path> [options]
   skillkit scan secrets .
   skillkit scan secrets ./src --severity high
   skillkit scan secrets . --format sarif -o findings.sarif`,
		Description: `Walk the tree under path and match file contents against the
   credential pattern registry (cloud keys, API tokens, private keys,
   connection strings), plus an entropy detector for generic secrets.

   Findings named in the allowlist file are suppressed. Use --format
   sarif to feed code scanning tools.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "severity",
				Usage: "Minimum severity to report (info, low, medium, high, critical)",
			},
			&cli.BoolFlag{
				Name:  "no-entropy",
				Usage: "Disable entropy-based detection",
			},
			&cli.Float64Flag{
				Name:  "entropy-threshold",
				Usage: "Shannon entropy threshold for generic secrets",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Only scan files matching this glob (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Skip files matching this glob (repeatable)",
			},
			&cli.StringFlag{
				Name:  "allowlist",
				Usage: "Path to an allowlist file of reviewed findings",
			},
			scanFormatFlag("markdown, json, or sarif"),
			scanOutputFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() < 1 {
				return errors.New("path to scan is required")
			}
			return runScanSecrets(ctx, cmd, args.Get(0))
		},
	}
}

func scanHistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Find secrets in git commit history",
		UsageText: `skillkit scan history <repo> [options]
   skillkit scan history .
   skillkit scan history . --depth 500 --all-branches
   skillkit scan history ../service --branch release`,
		Description: `Scan commit diffs for secrets that were ever added, including
   ones later deleted. A finding still present at HEAD is flagged for
   rotation; a removed one is flagged for history rewriting, since
   deleting a secret does not unpublish it.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "depth",
				Usage: "Number of commits to inspect",
				Value: 100,
			},
			&cli.StringFlag{
				Name:  "branch",
				Usage: "Scan a specific branch instead of the checked-out one",
			},
			&cli.BoolFlag{
				Name:  "all-branches",
				Usage: "Scan commits reachable from any ref",
			},
			scanFormatFlag("markdown or json"),
			scanOutputFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() < 1 {
				return errors.New("repository path is required")
			}
			return runScanHistory(ctx, cmd, args.Get(0))
		},
	}
}

func scanLogsCommand() *cli.Command {
	return &cli.Command{
		Name:  "logs",
		Usage: "Find sensitive data flowing into log statements",
		UsageText: `skillkit scan logs <path> [options]
   skillkit scan logs ./src
   skillkit scan logs . --exclude "**/testdata/**"`,
		Description: `Inspect log calls across common languages and flag statements
   that print passwords, tokens, keys, or personal data. Each finding
   carries the matched statement with the value masked.`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Only scan files matching this glob (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Skip files matching this glob (repeatable)",
			},
			scanFormatFlag("markdown or json"),
			scanOutputFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() < 1 {
				return errors.New("path to scan is required")
			}
			return runScanLogs(ctx, cmd, args.Get(0))
		},
	}
}

func scanFormatFlag(usage string) cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Report format: " + usage,
		Value:   "markdown",
	}
}

func scanOutputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "File to write the report to (default: stdout)",
	}
}

func runScanSecrets(ctx context.Context, cmd *cli.Command, root string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := secscan.Options{
		NoEntropy:        cmd.Bool("no-entropy"),
		EntropyThreshold: cfg.Scan.EntropyThreshold,
		MaxFileSize:      cfg.Scan.MaxFileSize,
		SkipDirs:         cfg.Scan.SkipDirs,
		Include:          cmd.StringSlice("include"),
		Exclude:          cmd.StringSlice("exclude"),
	}
	if t := cmd.Float64("entropy-threshold"); t > 0 {
		opts.EntropyThreshold = t
	}
	if v := cmd.String("severity"); v != "" {
		minSeverity, err := scan.ParseSeverity(v)
		if err != nil {
			return err
		}
		opts.MinSeverity = minSeverity
	}

	allowlistPath := cmd.String("allowlist")
	if allowlistPath == "" {
		allowlistPath = cfg.Scan.AllowlistFile
	}
	if allowlistPath != "" {
		allowlist, err := secscan.LoadAllowlist(allowlistPath)
		if err != nil {
			return fmt.Errorf("failed to load allowlist: %w", err)
		}
		opts.Allowlist = allowlist
	}

	res, err := secscan.New(opts).Scan(ctx, root)
	if err != nil {
		return err
	}

	out, cleanup, err := reportWriter(cmd.String("output"))
	if err != nil {
		return err
	}
	defer cleanup()

	switch format := cmd.String("format"); format {
	case "json":
		err = secscan.WriteJSON(out, res)
	case "markdown", "md":
		err = secscan.WriteMarkdown(out, res)
	case "sarif":
		err = secscan.WriteSARIF(out, res, Version)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return err
	}

	return scanExitError(res.ExitCode(), len(res.Findings))
}

func runScanHistory(ctx context.Context, cmd *cli.Command, repo string) error {
	opts := gitscan.Options{
		Depth:       cmd.Int("depth"),
		Branch:      cmd.String("branch"),
		AllBranches: cmd.Bool("all-branches"),
	}

	res, err := gitscan.New(repo, opts).Scan(ctx)
	if err != nil {
		return err
	}

	out, cleanup, err := reportWriter(cmd.String("output"))
	if err != nil {
		return err
	}
	defer cleanup()

	switch format := cmd.String("format"); format {
	case "json":
		err = gitscan.WriteJSON(out, res)
	case "markdown", "md":
		err = gitscan.WriteMarkdown(out, res)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return err
	}

	return scanExitError(res.ExitCode(), len(res.Findings))
}

func runScanLogs(ctx context.Context, cmd *cli.Command, root string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := logscan.Options{
		Include:     cmd.StringSlice("include"),
		Exclude:     cmd.StringSlice("exclude"),
		SkipDirs:    cfg.Scan.SkipDirs,
		MaxFileSize: cfg.Scan.MaxFileSize,
	}

	res, err := logscan.New(opts).Scan(ctx, root)
	if err != nil {
		return err
	}

	out, cleanup, err := reportWriter(cmd.String("output"))
	if err != nil {
		return err
	}
	defer cleanup()

	switch format := cmd.String("format"); format {
	case "json":
		err = logscan.WriteJSON(out, res)
	case "markdown", "md":
		err = logscan.WriteMarkdown(out, res)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return err
	}

	return scanExitError(res.ExitCode(), len(res.Findings))
}

// scanExitError converts a scanner exit code into the error main maps
// onto the process exit status. Code 0 yields nil.
func scanExitError(code, findings int) error {
	if code == 0 {
		return nil
	}
	return exitWithCode(fmt.Sprintf("%d finding(s) require attention", findings), code)
}

// reportWriter opens the report destination. An empty or "-" path
// means stdout, which must not be closed.
func reportWriter(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path) // #nosec G304 - user-chosen report path
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create report file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
