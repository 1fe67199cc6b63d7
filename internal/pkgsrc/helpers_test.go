package pkgsrc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pkgbuild/internal/compiler"
	"git.home.luguber.info/inful/pkgbuild/internal/pkgid"
)

func mkdir(t *testing.T, parts ...string) string {
	t.Helper()
	p := filepath.Join(parts...)
	require.NoError(t, os.MkdirAll(p, 0o750))
	return p
}

func touch(t *testing.T, parts ...string) string {
	t.Helper()
	p := filepath.Join(parts...)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte("// "+filepath.Base(p)), 0o600))
	return p
}

type fetchCall struct {
	local string
	id    pkgid.ID
}

// fakeFetcher succeeds for destinations listed in ok by creating them.
type fakeFetcher struct {
	calls []fetchCall
	ok    map[string]bool
	err   error
}

func (f *fakeFetcher) FetchGit(_ context.Context, local string, id pkgid.ID) (string, bool, error) {
	f.calls = append(f.calls, fetchCall{local: local, id: id})
	if f.err != nil {
		return "", false, f.err
	}
	if !f.ok[local] {
		return "", false, nil
	}
	if err := os.MkdirAll(local, 0o750); err != nil {
		return "", false, nil
	}
	return local, true, nil
}

// recordingCompiler records requests and optionally fails on one source.
type recordingCompiler struct {
	reqs   []compiler.Request
	failOn string
	err    error
}

func (c *recordingCompiler) Compile(_ context.Context, req compiler.Request) (string, error) {
	c.reqs = append(c.reqs, req)
	if c.failOn != "" && req.Source == c.failOn {
		return "", c.err
	}
	return compiler.ArtifactPath(req), nil
}

// recordingDeclarer captures declared inputs.
type recordingDeclarer map[string]string

func (d recordingDeclarer) DeclareInput(kind, name, fp string) {
	d[kind+":"+name] = fp
}
