package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pkgbuild/internal/pkgid"
)

func TestIsWorkspaceAndCreate(t *testing.T) {
	root := t.TempDir()
	require.False(t, IsWorkspace(root))

	require.NoError(t, Create(root))
	require.True(t, IsWorkspace(root))
	require.DirExists(t, filepath.Join(root, BuildDir))

	// src as a regular file is not a workspace
	other := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(other, SrcDir), []byte("x"), 0o600))
	require.False(t, IsWorkspace(other))
}

func TestDefaultWorkspace(t *testing.T) {
	configured := filepath.Join(t.TempDir(), "dw")
	got, err := DefaultWorkspace(configured, []string{"/ignored"})
	require.NoError(t, err)
	require.Equal(t, configured, got)
	require.True(t, IsWorkspace(got))

	first := filepath.Join(t.TempDir(), "first")
	got, err = DefaultWorkspace("", []string{first, "/second"})
	require.NoError(t, err)
	require.Equal(t, first, got)

	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err = DefaultWorkspace("", nil)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".pkgbuild"), got)
}

func TestResolveDefaultWorkspaceCreatesNothing(t *testing.T) {
	configured := filepath.Join(t.TempDir(), "dw")
	got, err := ResolveDefaultWorkspace(configured, nil)
	require.NoError(t, err)
	require.Equal(t, configured, got)
	require.NoDirExists(t, configured)
}

func TestSearchPathWith(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	env := map[string]string{EnvSearchPath: b + string(os.PathListSeparator) + a + string(os.PathListSeparator)}
	got := SearchPathWith([]string{a}, func(k string) string { return env[k] })
	require.Equal(t, []string{a, b}, got)
	require.Empty(t, SearchPathWith(nil, func(string) string { return "" }))
}

func TestFindDirUsingPathHack(t *testing.T) {
	id := pkgid.MustParse("github.com/acme/widgets")

	// entry/<path>
	entry := t.TempDir()
	nested := filepath.Join(entry, "github.com", "acme", "widgets")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	got, ok := FindDirUsingPathHack(id, []string{entry})
	require.True(t, ok)
	require.Equal(t, nested, got)

	// entry named after the short name
	named := filepath.Join(t.TempDir(), "widgets")
	require.NoError(t, os.MkdirAll(named, 0o750))
	got, ok = FindDirUsingPathHack(id, []string{t.TempDir(), named})
	require.True(t, ok)
	require.Equal(t, named, got)

	// workspaces are skipped
	ws := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(ws, SrcDir), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(ws, "github.com", "acme", "widgets"), 0o750))
	_, ok = FindDirUsingPathHack(id, []string{ws})
	require.False(t, ok)
}

func TestOutputDir(t *testing.T) {
	id := pkgid.MustParse("a/b#1.0")
	require.Equal(t, filepath.Join("/ws", "build", "a", "b"), OutputDir("/ws", id))
	require.Equal(t, filepath.Join("/ws", "src", "a", "b-1.0"), SourcePath("/ws", "a", id.VersionedDirName()))
}
