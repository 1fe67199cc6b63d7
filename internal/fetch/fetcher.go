// Package fetch stages git clones of package sources and promotes them into place.
package fetch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	ferrors "git.home.luguber.info/inful/pkgbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/pkgbuild/internal/logfields"
	"git.home.luguber.info/inful/pkgbuild/internal/metrics"
	"git.home.luguber.info/inful/pkgbuild/internal/pkgid"
)

// Cloner is the version-control clone primitive.
type Cloner interface {
	CloneLocal(ctx context.Context, src, dest string, version pkgid.Version) error
	CloneRemote(ctx context.Context, url, dest string, version pkgid.Version) error
}

// FailedToCreateTempDirError reports that no staging directory could be created.
type FailedToCreateTempDirError struct {
	Dir string
	Err error
}

func (e *FailedToCreateTempDirError) Error() string {
	return "failed to create temporary directory for fetching git sources: " + e.Err.Error()
}
func (e *FailedToCreateTempDirError) Unwrap() error                   { return e.Err }
func (e *FailedToCreateTempDirError) Category() ferrors.ErrorCategory { return ferrors.CategoryFileSystem }

// Fetcher resolves package identifiers to git repositories and clones them.
type Fetcher struct {
	cloner   Cloner
	tempDir  string
	recorder metrics.Recorder
	// exists reports whether a package path names a local repository.
	exists func(string) bool
}

// New creates a fetcher staging clones under os.TempDir().
func New(cloner Cloner) *Fetcher {
	return &Fetcher{cloner: cloner, recorder: metrics.NoopRecorder{}, exists: pathExists}
}

// WithTempDir stages clones under dir instead of os.TempDir().
func (f *Fetcher) WithTempDir(dir string) *Fetcher { f.tempDir = dir; return f }

// WithRecorder attaches a metrics recorder.
func (f *Fetcher) WithRecorder(r metrics.Recorder) *Fetcher { f.recorder = metrics.OrNoop(r); return f }

// FetchGit tries to obtain id as a git repository at local. It returns local and
// true on success; false means the package could not be fetched. The only error is
// *FailedToCreateTempDirError.
//
// A package path that exists on the local filesystem is cloned straight into local.
// Otherwise, paths with at least two segments are cloned from https://<path> into a
// staging directory and renamed into place. The staging directory is always removed.
func (f *Fetcher) FetchGit(ctx context.Context, local string, id pkgid.ID) (string, bool, error) {
	scratch, err := os.MkdirTemp(f.tempDir, "pkgbuild")
	if err != nil {
		return "", false, &FailedToCreateTempDirError{Dir: f.tempDir, Err: err}
	}
	defer func() {
		if rmErr := os.RemoveAll(scratch); rmErr != nil {
			slog.Warn("failed to remove fetch staging directory", logfields.Path(scratch), logfields.Error(rmErr))
		}
	}()
	target := filepath.Join(scratch, "pkgbuild_temp")

	if f.exists(id.FilePath()) {
		slog.Debug("Package path exists locally, cloning", logfields.PackageID(id.String()), logfields.Path(id.FilePath()), slog.String("dest", local))
		start := time.Now()
		err := f.cloner.CloneLocal(ctx, id.FilePath(), local, id.Version())
		f.observe("local", start, err == nil)
		if err != nil {
			slog.Debug("Local clone failed", logfields.PackageID(id.String()), logfields.Error(err))
			return "", false, nil
		}
		return local, true, nil
	}

	if len(id.Segments()) < 2 {
		slog.Debug("Package path is not a URL fragment, not fetching", logfields.PackageID(id.String()))
		f.recorder.IncFetchResult("skipped", false)
		return "", false, nil
	}

	url := "https://" + id.Path()
	slog.Debug("Fetching package", logfields.URL(url), slog.String("dest", target), logfields.Version(id.Version().String()))
	start := time.Now()
	if err := f.cloner.CloneRemote(ctx, url, target, id.Version()); err != nil {
		f.observe("remote", start, false)
		slog.Debug("Remote clone failed", logfields.URL(url), logfields.Error(err))
		return "", false, nil
	}
	if err := promote(target, local); err != nil {
		f.observe("remote", start, false)
		slog.Debug("Failed to move fetched package into place", logfields.Path(local), logfields.Error(err))
		return "", false, nil
	}
	f.observe("remote", start, true)
	slog.Info("Fetched package", logfields.PackageID(id.String()), logfields.URL(url), logfields.Path(local))
	return local, true, nil
}

func (f *Fetcher) observe(mode string, start time.Time, ok bool) {
	f.recorder.ObserveFetchDuration(time.Since(start), ok)
	f.recorder.IncFetchResult(mode, ok)
}

// promote creates the ancestors of dest and renames src onto it.
func promote(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return err
	}
	return os.Rename(src, dest)
}

func pathExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
