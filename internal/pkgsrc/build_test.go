package pkgsrc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pkgbuild/internal/compiler"
	"git.home.luguber.info/inful/pkgbuild/internal/pkgid"
	"git.home.luguber.info/inful/pkgbuild/internal/workcache"
)

// workspaceSource creates a workspace package with one unit of every kind.
func workspaceSource(t *testing.T) *PackageSource {
	t.Helper()
	root := t.TempDir()
	start := mkdir(t, root, "src", "widgets")
	touch(t, start, "bench.rs")
	touch(t, start, "test.rs")
	touch(t, start, "main.rs")
	touch(t, start, "lib.rs")
	src := &PackageSource{Workspace: root, StartDir: start, ID: pkgid.MustParse("widgets")}
	require.NoError(t, src.FindUnits())
	return src
}

func TestBuild_CategoryOrderAndCfgs(t *testing.T) {
	src := workspaceSource(t)
	src.units[Library][0].Cfgs = []string{"unit"}
	src.units[Library][0].Flags = []string{"-O"}
	c := &recordingCompiler{}

	dest, err := src.Build(context.Background(), nil, BuildContext{Compiler: c}, []string{"global"})
	require.NoError(t, err)
	require.Equal(t, src.Workspace, dest)

	require.Len(t, c.reqs, 4)
	kinds := make([]compiler.OutputKind, 0, len(c.reqs))
	for _, r := range c.reqs {
		kinds = append(kinds, r.Kind)
		require.Equal(t, src.Workspace, r.Destination)
		require.True(t, filepath.IsAbs(r.Source))
	}
	require.Equal(t, []compiler.OutputKind{compiler.Library, compiler.Executable, compiler.Test, compiler.Benchmark}, kinds)
	require.Equal(t, []string{"unit", "global"}, c.reqs[0].Cfgs)
	require.Equal(t, []string{"-O"}, c.reqs[0].Flags)
	require.Equal(t, []string{"global"}, c.reqs[1].Cfgs)
}

func TestBuild_CompilerErrorAborts(t *testing.T) {
	src := workspaceSource(t)
	boom := errors.New("compile failed")
	c := &recordingCompiler{failOn: filepath.Join(src.StartDir, "main.rs"), err: boom}

	_, err := src.Build(context.Background(), nil, BuildContext{Compiler: c}, nil)
	require.ErrorIs(t, err, boom)
	require.Len(t, c.reqs, 2, "units after the failure must not be compiled")
}

func TestBuild_NotAWorkspace(t *testing.T) {
	start := t.TempDir()
	touch(t, start, "lib.rs")
	src := &PackageSource{Workspace: start, StartDir: start, ID: pkgid.MustParse("widgets")}
	require.NoError(t, src.FindUnits())
	c := &recordingCompiler{}

	_, err := src.Build(context.Background(), nil, BuildContext{Compiler: c}, nil)
	var werr *NotAWorkspaceError
	require.ErrorAs(t, err, &werr)
	require.Equal(t, start, werr.Path)
	require.Empty(t, c.reqs)

	defaultWS := t.TempDir()
	dest, err := src.Build(context.Background(), nil, BuildContext{Compiler: c, HackMode: true, DefaultWorkspace: defaultWS}, nil)
	require.NoError(t, err)
	require.Equal(t, defaultWS, dest)
	require.Len(t, c.reqs, 1)
	require.Equal(t, defaultWS, c.reqs[0].Destination)
}

func TestBuild_RecoverWorkspace(t *testing.T) {
	start := t.TempDir()
	touch(t, start, "main.rs")
	src := &PackageSource{Workspace: start, StartDir: start, ID: pkgid.MustParse("widgets")}
	require.NoError(t, src.FindUnits())
	substitute := t.TempDir()

	dest, err := src.Build(context.Background(), nil, BuildContext{
		Compiler:         &recordingCompiler{},
		RecoverWorkspace: func(*NotAWorkspaceError) (string, bool) { return substitute, true },
	}, nil)
	require.NoError(t, err)
	require.Equal(t, substitute, dest)
}

func TestDeclareInputs_IdempotentAndSensitive(t *testing.T) {
	src := workspaceSource(t)

	first := recordingDeclarer{}
	src.DeclareInputs(first)
	require.Len(t, first, 4)
	for key := range first {
		require.Contains(t, key, InputKindFile+":")
	}

	second := recordingDeclarer{}
	src.DeclareInputs(second)
	require.Equal(t, first, second)

	lib := filepath.Join(src.StartDir, "lib.rs")
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.WriteFile(lib, []byte("pub fn changed() {}"), 0o600))
	require.NoError(t, os.Chtimes(lib, later, later))

	third := recordingDeclarer{}
	src.DeclareInputs(third)
	for key, fp := range first {
		if key == InputKindFile+":"+lib {
			require.NotEqual(t, fp, third[key])
			continue
		}
		require.Equal(t, fp, third[key], key)
	}
}

func TestDeclareInputsWithWorkcache(t *testing.T) {
	src := workspaceSource(t)
	cache := workcache.Disabled()
	ctx := context.Background()
	require.NoError(t, cache.Prep(ctx, "build:widgets", func(p *workcache.Prep) error {
		src.DeclareInputs(p)
		require.Len(t, p.Inputs(), 4)
		_, err := p.Exec(ctx, func(e *workcache.Exec) (string, error) {
			return src.Build(ctx, e, BuildContext{Compiler: &recordingCompiler{}}, nil)
		})
		return err
	}))
}
