package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pkgbuild/internal/foundation/errors"
)

// runCLI parses args and runs the selected command with captured output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": "test"}, kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)

	var out bytes.Buffer
	g := &Global{Ctx: context.Background(), Out: &out}
	err = kctx.Run(g, &cli)
	return out.String(), err
}

// isolate points every ambient lookup at temporary directories.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", filepath.Join(dir, "home"))
	t.Setenv("PKGBUILD_PATH", "")
	t.Setenv("PKGBUILD_WORKSPACE", "")
	t.Setenv("PKGBUILD_HACK", "")
	t.Setenv("PKGBUILD_LOG_LEVEL", "")
	t.Setenv("PKGBUILD_DEFAULT_WORKSPACE", filepath.Join(dir, "default-ws"))
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestInitWritesConfigOnce(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "pkgbuild.yaml")

	out, err := runCLI(t, "-c", cfgPath, "init")
	require.NoError(t, err)
	require.Contains(t, out, cfgPath)
	require.FileExists(t, cfgPath)

	_, err = runCLI(t, "-c", cfgPath, "init")
	require.Error(t, err)
	require.Equal(t, errors.CategoryConfig, errors.GetCategory(err))

	_, err = runCLI(t, "-c", cfgPath, "init", "--force")
	require.NoError(t, err)
}

func TestLocateAndUnits(t *testing.T) {
	dir := isolate(t)
	ws := filepath.Join(dir, "ws")
	writeFile(t, filepath.Join(ws, "src", "acme", "widgets", "lib.rs"), "")
	writeFile(t, filepath.Join(ws, "src", "acme", "widgets", "main.rs"), "")
	writeFile(t, filepath.Join(ws, "src", "acme", "widgets", "pkg.rs"), "")

	out, err := runCLI(t, "-w", ws, "locate", "acme/widgets")
	require.NoError(t, err)
	require.Contains(t, out, "start dir: "+filepath.Join(ws, "src", "acme", "widgets"))
	require.Contains(t, out, "script:")

	out, err = runCLI(t, "-w", ws, "units", "acme/widgets")
	require.NoError(t, err)
	require.Contains(t, out, "library")
	require.Contains(t, out, filepath.Join(ws, "src", "acme", "widgets", "lib.rs"))
	require.Contains(t, out, "executable")
}

func TestLocateHackMode(t *testing.T) {
	dir := isolate(t)
	pkg := filepath.Join(dir, "checkout")
	writeFile(t, filepath.Join(pkg, "lib.rs"), "")

	out, err := runCLI(t, "--hack", "-w", pkg, "locate", "anything")
	require.NoError(t, err)
	require.Contains(t, out, "start dir: "+pkg)
}

func TestLocateMissingPackage(t *testing.T) {
	dir := isolate(t)
	ws := filepath.Join(dir, "ws")
	require.NoError(t, os.MkdirAll(filepath.Join(ws, "src"), 0o750))

	_, err := runCLI(t, "-w", ws, "locate", "missing")
	require.Error(t, err)
	require.Equal(t, errors.CategoryNotFound, errors.GetCategory(err))
}

func TestUnitsWithoutBuildFiles(t *testing.T) {
	dir := isolate(t)
	ws := filepath.Join(dir, "ws")
	writeFile(t, filepath.Join(ws, "src", "empty", "README"), "")

	_, err := runCLI(t, "-w", ws, "units", "empty")
	require.Error(t, err)
	require.Equal(t, errors.CategoryPackage, errors.GetCategory(err))
}

func TestInvalidIdentifier(t *testing.T) {
	isolate(t)
	_, err := runCLI(t, "locate", "a/../b")
	require.Error(t, err)
	require.Equal(t, errors.CategoryValidation, errors.GetCategory(err))
}

func TestBuildUsesCache(t *testing.T) {
	dir := isolate(t)
	ws := filepath.Join(dir, "ws")
	writeFile(t, filepath.Join(ws, "src", "tool", "main.rs"), "fn main() {}")
	cfgPath := filepath.Join(dir, "pkgbuild.yaml")
	writeFile(t, cfgPath, "compiler:\n  command: \"true\"\n")

	out, err := runCLI(t, "-c", cfgPath, "-w", ws, "build", "tool")
	require.NoError(t, err)
	require.Contains(t, out, "success tool")
	require.Contains(t, out, "destination: "+ws)
	require.FileExists(t, filepath.Join(ws, ".pkgbuild", "workcache.db"))

	out, err = runCLI(t, "-c", cfgPath, "-w", ws, "build", "tool")
	require.NoError(t, err)
	require.Contains(t, out, "cached tool")

	out, err = runCLI(t, "-c", cfgPath, "-w", ws, "build", "tool", "--force")
	require.NoError(t, err)
	require.Contains(t, out, "success tool")
}

func TestBuildCompilerFailure(t *testing.T) {
	dir := isolate(t)
	ws := filepath.Join(dir, "ws")
	writeFile(t, filepath.Join(ws, "src", "tool", "lib.rs"), "")
	cfgPath := filepath.Join(dir, "pkgbuild.yaml")
	writeFile(t, cfgPath, "compiler:\n  command: \"false\"\ncache:\n  disabled: true\n")

	_, err := runCLI(t, "-c", cfgPath, "-w", ws, "build", "tool")
	require.Error(t, err)
	require.Equal(t, errors.CategoryBuild, errors.GetCategory(err))
}

func TestMetricsFileWritten(t *testing.T) {
	dir := isolate(t)
	ws := filepath.Join(dir, "ws")
	writeFile(t, filepath.Join(ws, "src", "lib1", "lib.rs"), "")
	metricsPath := filepath.Join(dir, "metrics.prom")

	_, err := runCLI(t, "-w", ws, "--metrics-file", metricsPath, "locate", "lib1")
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	require.Contains(t, string(data), `pkgbuild_resolve_strategy_total{strategy="candidate"} 1`)
}

func TestFetchSkipsSingleSegment(t *testing.T) {
	dir := isolate(t)
	ws := filepath.Join(dir, "ws")
	require.NoError(t, os.MkdirAll(filepath.Join(ws, "src"), 0o750))

	out, err := runCLI(t, "-w", ws, "fetch", "local")
	require.NoError(t, err)
	require.Contains(t, out, "local not fetched")
}

func TestWatchIgnoresCacheFilesNotWorkspace(t *testing.T) {
	ws := t.TempDir()
	rt := &Runtime{Workspace: ws, CachePath: filepath.Join(ws, "work.db")}

	ignore := watchIgnores(rt)
	require.NotContains(t, ignore, ws)
	require.Contains(t, ignore, filepath.Join(ws, "build"))
	require.Contains(t, ignore, filepath.Join(ws, "work.db"))
	require.Contains(t, ignore, filepath.Join(ws, "work.db-wal"))
	require.Contains(t, ignore, filepath.Join(ws, "work.db-journal"))
}

func TestDefaultWorkspaceCreatedOnlyInHackMode(t *testing.T) {
	dir := isolate(t)
	ws := filepath.Join(dir, "ws")
	writeFile(t, filepath.Join(ws, "src", "lib1", "lib.rs"), "")
	defaultWS := filepath.Join(dir, "default-ws")

	_, err := runCLI(t, "-w", ws, "locate", "lib1")
	require.NoError(t, err)
	require.NoDirExists(t, defaultWS)

	pkg := filepath.Join(dir, "checkout")
	writeFile(t, filepath.Join(pkg, "lib.rs"), "")
	_, err = runCLI(t, "--hack", "-w", pkg, "locate", "anything")
	require.NoError(t, err)
	require.DirExists(t, filepath.Join(defaultWS, "src"))
}

