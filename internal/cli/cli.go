// Package cli provides the command-line interface for skillkit.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/devskills/skillkit/internal/config"
	"github.com/devskills/skillkit/internal/library"
	"github.com/devskills/skillkit/internal/logging"
	"github.com/devskills/skillkit/internal/model"
	"github.com/devskills/skillkit/internal/ui"
)

var (
	// Version is the current version of the application.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// BuildDate is the date and time of the build.
	BuildDate = "unknown"
)

// Run executes the CLI application with the given context and arguments.
func Run(ctx context.Context, args []string) error {
	app := &cli.Command{
		Name:    "skillkit",
		Usage:   "Manage, lint, and scan agent skill libraries",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output (info level logging)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug output (debug level logging, implies verbose)",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Bypass the skill parse cache",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			configureColors(cmd)
			return ctx, configureLogging(cmd)
		},
		Commands: []*cli.Command{
			listCommand(),
			showCommand(),
			searchCommand(),
			lintCommand(),
			dupesCommand(),
			newCommand(),
			installCommand(),
			uninstallCommand(),
			bundleCommand(),
			exportCommand(),
			statsCommand(),
			browseCommand(),
			backupsCommand(),
			scanCommand(),
			versionCommand(),
		},
	}
	return app.Run(ctx, args)
}

// configureColors sets up color output based on CLI flags.
func configureColors(cmd *cli.Command) {
	if cmd.Bool("no-color") {
		ui.DisableColors()
	}
}

// configureLogging sets up the logging level based on CLI flags.
func configureLogging(cmd *cli.Command) error {
	opts := logging.DefaultOptions()

	if cmd.Bool("debug") {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	} else if cmd.Bool("verbose") {
		opts.Level = slog.LevelInfo
	}

	logger := logging.New(opts)
	logging.SetDefault(logger)

	logging.Debug("logging configured", slog.String("level", opts.Level.String()))

	return nil
}

// exitCodeError carries a process exit code that differs from the
// generic failure code. Scan commands use it to report severity through
// the exit status without terminating inside Run, which keeps commands
// testable.
type exitCodeError struct {
	msg  string
	code int
}

func (e *exitCodeError) Error() string { return e.msg }

// exitWithCode wraps msg in an error that makes the process exit with code.
func exitWithCode(msg string, code int) error {
	return &exitCodeError{msg: msg, code: code}
}

// ExitCode maps an error returned by Run to a process exit code.
// Nil maps to 0 and unrecognized errors map to 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ec *exitCodeError
	if errors.As(err, &ec) {
		return ec.code
	}
	return 1
}

// loadConfig loads the user configuration, falling back to defaults
// when no config file exists.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// loadLibrary loads the skill library for the given sources. An empty
// source list loads all tiers. The global --no-cache flag resolves
// through cmd's lineage.
func loadLibrary(ctx context.Context, cmd *cli.Command, cfg *config.Config, sources ...model.Source) (*library.Library, error) {
	lib, err := library.Load(ctx, library.Options{
		Config:  cfg,
		Sources: sources,
		NoCache: cmd.Bool("no-cache"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load skill library: %w", err)
	}
	return lib, nil
}

// sourceFilter parses an optional --source flag value. An empty value
// means no restriction.
func sourceFilter(value string) ([]model.Source, error) {
	if value == "" {
		return nil, nil
	}
	source, err := model.ParseSource(value)
	if err != nil {
		return nil, fmt.Errorf("invalid source: %w", err)
	}
	return []model.Source{source}, nil
}

// outputAnyJSON writes v to stdout as indented JSON.
func outputAnyJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
