package compiler

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"git.home.luguber.info/inful/pkgbuild/internal/config"
	"git.home.luguber.info/inful/pkgbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/pkgbuild/internal/logfields"
	"git.home.luguber.info/inful/pkgbuild/internal/metrics"
	"git.home.luguber.info/inful/pkgbuild/internal/workcache"
	"git.home.luguber.info/inful/pkgbuild/internal/workspace"
)

// runFunc executes name with args and returns combined output.
type runFunc func(ctx context.Context, name string, args, env []string) ([]byte, error)

// CommandCompiler runs a configured compiler command.
type CommandCompiler struct {
	command  string
	args     []string
	kindArgs map[string][]string
	env      []string
	recorder metrics.Recorder
	run      runFunc
}

// NewCommandCompiler creates a compiler from configuration.
func NewCommandCompiler(cfg config.CompilerConfig) *CommandCompiler {
	return &CommandCompiler{
		command:  cfg.Command,
		args:     slices.Clone(cfg.Args),
		kindArgs: cfg.KindArgs,
		env:      slices.Clone(cfg.Env),
		recorder: metrics.NoopRecorder{},
		run:      runCommand,
	}
}

// WithRecorder attaches a metrics recorder.
func (c *CommandCompiler) WithRecorder(r metrics.Recorder) *CommandCompiler {
	c.recorder = metrics.OrNoop(r)
	return c
}

// OutDir returns the directory receiving artifacts for req.
func OutDir(req Request) string {
	return workspace.OutputDir(req.Destination, req.ID)
}

// ArtifactPath returns the expected artifact for req.
func ArtifactPath(req Request) string {
	name := req.ID.ShortName()
	switch req.Kind {
	case Library:
		name = "lib" + name
	case Test:
		name += "-test"
	case Benchmark:
		name += "-bench"
	}
	return filepath.Join(OutDir(req), name)
}

// Args renders the argument list: base args, kind args, unit flags, one --cfg per
// tag, --out-dir, then the source path.
func (c *CommandCompiler) Args(req Request) []string {
	args := slices.Clone(c.args)
	args = append(args, c.kindArgs[string(req.Kind)]...)
	args = append(args, req.Flags...)
	for _, cfg := range req.Cfgs {
		args = append(args, "--cfg", cfg)
	}
	return append(args, "--out-dir", OutDir(req), req.Source)
}

// Compile runs the compiler for req. A failure aborts with a build error carrying
// the compiler output.
func (c *CommandCompiler) Compile(ctx context.Context, req Request) (string, error) {
	outDir := OutDir(req)
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return "", errors.FileSystemError("failed to create output directory").
			WithCause(err).
			WithContext("path", outDir).
			Build()
	}

	args := c.Args(req)
	slog.Debug("Compiling unit", logfields.PackageID(req.ID.String()), logfields.Unit(req.Source), logfields.Kind(string(req.Kind)),
		slog.String("command", c.command+" "+strings.Join(args, " ")))
	start := time.Now()
	out, err := c.run(ctx, c.command, args, c.env)
	c.recorder.ObserveUnitDuration(string(req.Kind), time.Since(start))
	if err != nil {
		return "", errors.BuildError("compilation failed").
			WithCause(err).
			WithContext("unit", req.Source).
			WithContext("kind", string(req.Kind)).
			WithContext("output", strings.TrimSpace(string(out))).
			Build()
	}

	artifact := ArtifactPath(req)
	if req.Exec != nil {
		if _, statErr := os.Stat(artifact); statErr == nil {
			req.Exec.DiscoverOutput("binary", artifact, workcache.DigestOnlyDate(artifact))
		}
	}
	return artifact, nil
}

func runCommand(ctx context.Context, name string, args, env []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- compiler command is user configuration
	cmd.Env = append(os.Environ(), env...)
	return cmd.CombinedOutput()
}
