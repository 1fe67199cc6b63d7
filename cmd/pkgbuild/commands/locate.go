package commands

import (
	"fmt"

	"git.home.luguber.info/inful/pkgbuild/internal/pkgid"
	"git.home.luguber.info/inful/pkgbuild/internal/pkgsrc"
)

// LocateCmd implements the 'locate' command.
type LocateCmd struct {
	ID string `arg:"" name:"id" help:"Package identifier (path[#version])"`
}

func (l *LocateCmd) Run(g *Global, root *CLI) error {
	return withRuntime(root, func(rt *Runtime) error {
		src, err := locate(g, rt, l.ID)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(g.Out, "id:        %s\n", src.ID)
		_, _ = fmt.Fprintf(g.Out, "start dir: %s\n", src.StartDir)
		_, _ = fmt.Fprintf(g.Out, "workspace: %s\n", src.Workspace)
		if script, ok := src.PackageScript(); ok {
			_, _ = fmt.Fprintf(g.Out, "script:    %s\n", script)
		}
		return nil
	})
}

// UnitsCmd implements the 'units' command.
type UnitsCmd struct {
	ID string `arg:"" name:"id" help:"Package identifier (path[#version])"`
}

func (u *UnitsCmd) Run(g *Global, root *CLI) error {
	return withRuntime(root, func(rt *Runtime) error {
		src, err := locate(g, rt, u.ID)
		if err != nil {
			return err
		}
		if err := src.FindUnits(); err != nil {
			return err
		}
		for _, cat := range pkgsrc.Categories {
			for _, unit := range src.Units(cat) {
				_, _ = fmt.Fprintf(g.Out, "%-10s %s\n", cat, src.UnitPath(unit))
			}
		}
		return nil
	})
}

func locate(g *Global, rt *Runtime, raw string) (*pkgsrc.PackageSource, error) {
	id, err := pkgid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return rt.Locator.Locate(g.Ctx, rt.Workspace, id)
}
