package pkgsrc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pkgbuild/internal/fetch"
	"git.home.luguber.info/inful/pkgbuild/internal/pkgid"
)

func TestLocate_VersionedCandidateWins(t *testing.T) {
	root := t.TempDir()
	versioned := mkdir(t, root, "src", "github.com", "acme", "widgets-v1.2.0")
	mkdir(t, root, "src", "github.com", "acme", "widgets")
	f := &fakeFetcher{}

	src, err := NewLocator(f).Locate(context.Background(), root, pkgid.MustParse("github.com/acme/widgets#v1.2.0"))
	require.NoError(t, err)
	require.Equal(t, versioned, src.StartDir)
	require.Equal(t, root, src.Workspace)
	require.Empty(t, f.calls)
}

func TestLocate_PlainCandidate(t *testing.T) {
	root := t.TempDir()
	plain := mkdir(t, root, "src", "widgets")

	src, err := NewLocator(&fakeFetcher{}).Locate(context.Background(), root, pkgid.MustParse("widgets"))
	require.NoError(t, err)
	require.Equal(t, plain, src.StartDir)
	require.Equal(t, "widgets", src.ID.Path())
}

func TestLocate_PrefixResolution(t *testing.T) {
	root := t.TempDir()
	mkdir(t, root, "src", "a", "b")
	f := &fakeFetcher{}

	src, err := NewLocator(f).Locate(context.Background(), root, pkgid.MustParse("a/b/c"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "src", "a", "b", "c"), src.StartDir)
	require.Equal(t, "a/b", src.ID.Path())
	require.Empty(t, f.calls, "prefix match must not fetch")
}

func TestLocate_LongestPrefixFirst(t *testing.T) {
	root := t.TempDir()
	mkdir(t, root, "src", "a")
	mkdir(t, root, "src", "a", "b")

	src, err := NewLocator(nil).Locate(context.Background(), root, pkgid.MustParse("a/b/c/d"))
	require.NoError(t, err)
	require.Equal(t, "a/b", src.ID.Path())
	require.Equal(t, filepath.Join(root, "src", "a", "b", "c", "d"), src.StartDir)
}

func TestLocate_FetchEachCandidateInOrder(t *testing.T) {
	root := t.TempDir()
	id := pkgid.MustParse("example.com/widgets#v2.0.0")
	versioned := filepath.Join(root, "src", "example.com", "widgets-v2.0.0")
	plain := filepath.Join(root, "src", "example.com", "widgets")
	f := &fakeFetcher{ok: map[string]bool{plain: true}}

	src, err := NewLocator(f).Locate(context.Background(), root, id)
	require.NoError(t, err)
	require.Equal(t, plain, src.StartDir)
	require.Len(t, f.calls, 2)
	require.Equal(t, versioned, f.calls[0].local)
	require.Equal(t, plain, f.calls[1].local)
}

func TestLocate_NonexistentPackage(t *testing.T) {
	root := t.TempDir()
	_, err := NewLocator(&fakeFetcher{}).Locate(context.Background(), root, pkgid.MustParse("nowhere/pkg"))
	var nerr *NonexistentPackageError
	require.ErrorAs(t, err, &nerr)
	require.Equal(t, ReasonNotFound, nerr.Reason)
	require.Equal(t, "nowhere/pkg", nerr.ID.Path())
}

func TestLocate_NotADirectory(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "src", "widgets")

	_, err := NewLocator(&fakeFetcher{}).Locate(context.Background(), root, pkgid.MustParse("widgets"))
	var nerr *NonexistentPackageError
	require.ErrorAs(t, err, &nerr)
	require.True(t, nerr.NotADirectory())
}

func TestLocate_RecoverHook(t *testing.T) {
	root := t.TempDir()
	substitute := t.TempDir()
	var seen *NonexistentPackageError
	l := NewLocator(&fakeFetcher{})
	l.Recover = func(e *NonexistentPackageError) (string, bool) {
		seen = e
		return substitute, true
	}

	src, err := l.Locate(context.Background(), root, pkgid.MustParse("missing"))
	require.NoError(t, err)
	require.Equal(t, substitute, src.StartDir)
	require.NotNil(t, seen)
	require.Equal(t, ReasonNotFound, seen.Reason)

	l.Recover = func(*NonexistentPackageError) (string, bool) { return "", false }
	_, err = l.Locate(context.Background(), root, pkgid.MustParse("missing"))
	require.Error(t, err)
}

func TestLocate_HackModeUsesRoot(t *testing.T) {
	root := t.TempDir()
	l := NewLocator(&fakeFetcher{})
	l.HackMode = true

	src, err := l.Locate(context.Background(), root, pkgid.MustParse("whatever/pkg"))
	require.NoError(t, err)
	require.Equal(t, root, src.StartDir)
	require.Equal(t, root, src.Workspace)
}

func TestLocate_HackModeSearchPathFallback(t *testing.T) {
	missingRoot := filepath.Join(t.TempDir(), "gone")
	entry := t.TempDir()
	found := mkdir(t, entry, "acme", "widgets")
	f := &fakeFetcher{}
	l := NewLocator(f)
	l.HackMode = true
	l.SearchPath = []string{entry}

	src, err := l.Locate(context.Background(), missingRoot, pkgid.MustParse("acme/widgets"))
	require.NoError(t, err)
	require.Equal(t, found, src.StartDir)
	require.Len(t, f.calls, 1)
	require.Equal(t, missingRoot, f.calls[0].local)
}

func TestLocate_TempDirFailurePropagates(t *testing.T) {
	root := t.TempDir()
	tempErr := &fetch.FailedToCreateTempDirError{Err: os.ErrPermission}
	_, err := NewLocator(&fakeFetcher{err: tempErr}).Locate(context.Background(), root, pkgid.MustParse("a/b"))
	require.ErrorIs(t, err, tempErr)
}

func TestPackageSourceString(t *testing.T) {
	src := &PackageSource{Workspace: "/ws", StartDir: "/ws/src/a", ID: pkgid.MustParse("a#1.0")}
	require.Equal(t, "Package ID a-1.0 in start dir /ws/src/a [workspace = /ws]", src.String())
}

func TestPackageScript(t *testing.T) {
	dir := t.TempDir()
	src := &PackageSource{StartDir: dir}
	_, ok := src.PackageScript()
	require.False(t, ok)

	script := touch(t, dir, PackageScriptName)
	got, ok := src.PackageScript()
	require.True(t, ok)
	require.Equal(t, script, got)
}
