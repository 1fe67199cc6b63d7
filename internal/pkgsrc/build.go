package pkgsrc

import (
	"context"
	"log/slog"
	"slices"

	"git.home.luguber.info/inful/pkgbuild/internal/compiler"
	"git.home.luguber.info/inful/pkgbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/pkgbuild/internal/logfields"
	"git.home.luguber.info/inful/pkgbuild/internal/workcache"
	"git.home.luguber.info/inful/pkgbuild/internal/workspace"
)

// InputKindFile is the input kind under which unit files are declared.
const InputKindFile = "file"

// InputDeclarer receives cache inputs.
type InputDeclarer interface {
	DeclareInput(kind, name, fingerprint string)
}

// BuildContext carries the collaborators of a build.
type BuildContext struct {
	Compiler compiler.Compiler
	HackMode bool
	// DefaultWorkspace receives output when the package root is not a workspace.
	DefaultWorkspace string
	// RecoverWorkspace, when set, may substitute a destination for a root that is
	// not a workspace outside hack mode. Returning false keeps the error.
	RecoverWorkspace func(*NotAWorkspaceError) (string, bool)
}

// DeclareInputs declares every unit file with its content and date digest.
func (s *PackageSource) DeclareInputs(prep InputDeclarer) {
	for _, cat := range Categories {
		for _, u := range s.units[cat] {
			p := s.UnitPath(u)
			slog.Debug("Declaring input", logfields.Path(p))
			prep.DeclareInput(InputKindFile, p, workcache.DigestFileWithDate(p))
		}
	}
}

// Destination returns the workspace receiving build output.
func (s *PackageSource) Destination(bctx BuildContext) (string, error) {
	if workspace.IsWorkspace(s.Workspace) {
		slog.Debug("Package root is a workspace", logfields.Workspace(s.Workspace))
		return s.Workspace, nil
	}
	if bctx.HackMode {
		if bctx.DefaultWorkspace == "" {
			return "", errors.ConfigError("no default workspace configured").
				WithContext("workspace", s.Workspace).
				Build()
		}
		slog.Debug("Using hack", logfields.Workspace(bctx.DefaultWorkspace))
		return bctx.DefaultWorkspace, nil
	}
	nerr := &NotAWorkspaceError{Path: s.Workspace}
	if bctx.RecoverWorkspace != nil {
		if dest, ok := bctx.RecoverWorkspace(nerr); ok {
			return dest, nil
		}
	}
	return "", nerr
}

// Build compiles every unit, libraries first, then executables, tests and
// benchmarks, and returns the destination workspace. The first compiler error
// aborts the build and is returned unchanged.
func (s *PackageSource) Build(ctx context.Context, exec *workcache.Exec, bctx BuildContext, cfgs []string) (string, error) {
	dest, err := s.Destination(bctx)
	if err != nil {
		return "", err
	}
	if bctx.Compiler == nil {
		return "", errors.InternalError("no compiler configured").Build()
	}

	for _, cat := range Categories {
		slog.Debug("Building units", logfields.Kind(cat.String()), logfields.Workspace(dest))
		for _, u := range s.units[cat] {
			p := s.UnitPath(u)
			req := compiler.Request{
				ID:          s.ID,
				Source:      p,
				Destination: dest,
				Flags:       slices.Clone(u.Flags),
				Cfgs:        append(slices.Clone(u.Cfgs), cfgs...),
				Kind:        cat.OutputKind(),
				Exec:        exec,
			}
			artifact, err := bctx.Compiler.Compile(ctx, req)
			if err != nil {
				return "", err
			}
			slog.Debug("Compiled unit", logfields.Unit(p), slog.String("artifact", artifact))
		}
	}
	return dest, nil
}
