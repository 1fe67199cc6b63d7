// Package commands implements the pkgbuild subcommands.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pkgbuild/internal/config"
)

// Global is passed to every subcommand.
type Global struct {
	Ctx    context.Context
	Out    io.Writer
	Logger *slog.Logger
}

// NewGlobal returns the shared state for one invocation.
func NewGlobal(ctx context.Context, out io.Writer) *Global {
	return &Global{Ctx: ctx, Out: out, Logger: slog.Default()}
}

// CLI definition & global flags.
type CLI struct {
	Config      string           `short:"c" help:"Configuration file path" default:"pkgbuild.yaml"`
	Verbose     bool             `short:"v" help:"Enable verbose logging"`
	Hack        bool             `help:"Treat the workspace directory itself as the package source"`
	Workspace   string           `short:"w" help:"Workspace root (overrides configuration)"`
	MetricsFile string           `name:"metrics-file" help:"Write Prometheus metrics in text format to this file on exit"`
	Version     kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build  BuildCmd  `cmd:"" help:"Build every unit of a package"`
	Locate LocateCmd `cmd:"" help:"Resolve a package identifier to its source directory"`
	Units  UnitsCmd  `cmd:"" help:"List the build units of a package"`
	Fetch  FetchCmd  `cmd:"" help:"Fetch a package from git into the workspace"`
	Watch  WatchCmd  `cmd:"" help:"Rebuild a package whenever its sources change"`
	Init   InitCmd   `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(newLogger(os.Stderr, level, config.LogFormatText))
	return nil
}

// LoadConfig loads the configuration file and applies the global flags on top.
func (c *CLI) LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	if c.Workspace != "" {
		cfg.Workspace = c.Workspace
	}
	if c.Hack {
		cfg.HackMode = true
	}
	if c.MetricsFile != "" {
		cfg.Metrics.Textfile = c.MetricsFile
	}
	level := cfg.Logging.Level.SlogLevel()
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(newLogger(os.Stderr, level, cfg.Logging.Format))
	return cfg, nil
}

func newLogger(w io.Writer, level slog.Level, format config.LogFormat) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
