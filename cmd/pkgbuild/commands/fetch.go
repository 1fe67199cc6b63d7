package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/pkgbuild/internal/pkgid"
	"git.home.luguber.info/inful/pkgbuild/internal/workspace"
)

// FetchCmd implements the 'fetch' command.
type FetchCmd struct {
	ID   string `arg:"" name:"id" help:"Package identifier (path[#version])"`
	Dest string `arg:"" optional:"" help:"Destination directory (defaults to the workspace source tree)"`
}

func (f *FetchCmd) Run(g *Global, root *CLI) error {
	id, err := pkgid.Parse(f.ID)
	if err != nil {
		return err
	}
	return withRuntime(root, func(rt *Runtime) error {
		dest := f.Dest
		if dest == "" {
			dest = workspace.SourcePath(rt.Workspace, id.FilePath())
		}
		dest, err := filepath.Abs(dest)
		if err != nil {
			return err
		}
		dir, ok, err := rt.Fetcher.FetchGit(g.Ctx, dest, id)
		if err != nil {
			return err
		}
		if !ok {
			_, _ = fmt.Fprintf(g.Out, "%s not fetched\n", id)
			return nil
		}
		_, _ = fmt.Fprintf(g.Out, "%s fetched into %s\n", id, dir)
		return nil
	})
}
