package pkgsrc

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/pkgbuild/internal/logfields"
	"git.home.luguber.info/inful/pkgbuild/internal/metrics"
	"git.home.luguber.info/inful/pkgbuild/internal/pkgid"
	"git.home.luguber.info/inful/pkgbuild/internal/workspace"
)

// Fetcher obtains a package as a git repository at local. It reports false when
// the package cannot be fetched; errors are reserved for failures that make
// fetching unsafe.
type Fetcher interface {
	FetchGit(ctx context.Context, local string, id pkgid.ID) (string, bool, error)
}

// Resolution strategies, reported to metrics.
const (
	StrategyCandidate = "candidate"
	StrategyPrefix    = "prefix"
	StrategyFetch     = "fetch"
	StrategyPathHack  = "path_hack"
	StrategyRecovered = "recovered"
	StrategyFailed    = "failed"
)

// Locator resolves package identifiers to source directories.
type Locator struct {
	Fetcher Fetcher
	// HackMode treats the workspace root itself as the package directory and enables
	// the search-path fallback.
	HackMode   bool
	SearchPath []string
	// Recover, when set, may substitute a directory for a package that could not be
	// resolved. Returning false keeps the error.
	Recover  func(*NonexistentPackageError) (string, bool)
	Recorder metrics.Recorder
}

// NewLocator creates a locator using fetcher for the git fallback.
func NewLocator(fetcher Fetcher) *Locator {
	return &Locator{Fetcher: fetcher, Recorder: metrics.NoopRecorder{}}
}

// Candidates lists the directories tried for id, in order.
func (l *Locator) Candidates(root string, id pkgid.ID) []string {
	if l.HackMode {
		return []string{root}
	}
	return []string{
		workspace.SourcePath(root, filepath.FromSlash(id.ParentPath()), id.VersionedDirName()),
		workspace.SourcePath(root, id.FilePath()),
	}
}

// Locate resolves id inside the workspace at root. The returned source's start
// directory is an existing directory.
func (l *Locator) Locate(ctx context.Context, root string, id pkgid.ID) (*PackageSource, error) {
	slog.Debug("Checking package source", logfields.PackageID(id.String()), logfields.Workspace(root))

	candidates := l.Candidates(root, id)
	slog.Debug("Checking dirs", logfields.PackageID(id.String()), slog.Any("candidates", candidates))

	for _, d := range candidates {
		if exists(d) {
			return l.finish(root, id, d, StrategyCandidate)
		}
	}

	if src, ok, err := l.locatePrefix(ctx, root, id); ok || err != nil {
		return src, err
	}

	for _, d := range candidates {
		slog.Debug("Calling fetch", logfields.PackageID(id.String()), logfields.Path(d))
		dir, ok, err := l.fetcher().FetchGit(ctx, d, id)
		if err != nil {
			return nil, err
		}
		if ok {
			return l.finish(root, id, dir, StrategyFetch)
		}
	}

	if l.HackMode {
		if dir, ok := workspace.FindDirUsingPathHack(id, l.SearchPath); ok {
			return l.finish(root, id, dir, StrategyPathHack)
		}
	}

	dir, err := l.recover(&NonexistentPackageError{ID: id, Reason: ReasonNotFound})
	if err != nil {
		return nil, err
	}
	return l.finish(root, id, dir, StrategyRecovered)
}

// locatePrefix resolves id through the longest enclosing package whose directory
// exists under src/, appending the unmatched suffix to that package's start
// directory. The enclosing package's identifier is kept.
func (l *Locator) locatePrefix(ctx context.Context, root string, id pkgid.ID) (*PackageSource, bool, error) {
	for prefix, suffix := range id.Prefixes() {
		dir := workspace.SourcePath(root, prefix.FilePath())
		slog.Debug("Checking prefix", logfields.PackageID(prefix.String()), logfields.Path(dir))
		if !isDir(dir) {
			continue
		}
		sub, err := l.Locate(ctx, root, prefix)
		if err != nil {
			return nil, true, err
		}
		src := &PackageSource{
			Workspace: root,
			StartDir:  filepath.Join(sub.StartDir, filepath.FromSlash(suffix)),
			ID:        sub.ID,
		}
		slog.Debug("Resolved through prefix", logfields.PackageID(src.ID.String()), logfields.StartDir(src.StartDir), logfields.Workspace(root))
		l.recorder().IncResolveStrategy(StrategyPrefix)
		return src, true, nil
	}
	return nil, false, nil
}

// finish checks that dir is a directory and builds the source.
func (l *Locator) finish(root string, id pkgid.ID, dir, strategy string) (*PackageSource, error) {
	if !isDir(dir) {
		recovered, err := l.recover(&NonexistentPackageError{ID: id, Reason: ReasonNotADirectory})
		if err != nil {
			return nil, err
		}
		if !isDir(recovered) {
			l.recorder().IncResolveStrategy(StrategyFailed)
			return nil, &NonexistentPackageError{ID: id, Reason: ReasonNotADirectory}
		}
		dir, strategy = recovered, StrategyRecovered
	}
	slog.Debug("Resolved package source", logfields.PackageID(id.String()), logfields.StartDir(dir), logfields.Workspace(root), logfields.Strategy(strategy))
	l.recorder().IncResolveStrategy(strategy)
	return &PackageSource{Workspace: root, StartDir: dir, ID: id}, nil
}

func (l *Locator) recover(nerr *NonexistentPackageError) (string, error) {
	if l.Recover != nil {
		if dir, ok := l.Recover(nerr); ok {
			slog.Debug("Recovered nonexistent package", logfields.PackageID(nerr.ID.String()), logfields.Path(dir))
			return dir, nil
		}
	}
	l.recorder().IncResolveStrategy(StrategyFailed)
	return "", nerr
}

func (l *Locator) fetcher() Fetcher {
	if l.Fetcher == nil {
		return noFetch{}
	}
	return l.Fetcher
}

func (l *Locator) recorder() metrics.Recorder { return metrics.OrNoop(l.Recorder) }

type noFetch struct{}

func (noFetch) FetchGit(context.Context, string, pkgid.ID) (string, bool, error) {
	return "", false, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
