package commands

import (
	"fmt"
	"slices"
	"time"

	"git.home.luguber.info/inful/pkgbuild/internal/build"
	"git.home.luguber.info/inful/pkgbuild/internal/pkgid"
	"git.home.luguber.info/inful/pkgbuild/internal/pkgsrc"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	ID    string   `arg:"" name:"id" help:"Package identifier (path[#version])"`
	Cfg   []string `name:"cfg" help:"Extra configuration tag passed to every unit (repeatable)"`
	Force bool     `help:"Ignore the cached result and rebuild"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	id, err := pkgid.Parse(b.ID)
	if err != nil {
		return err
	}
	return withRuntime(root, func(rt *Runtime) error {
		res, err := rt.Service.Run(g.Ctx, b.request(rt, id))
		if err != nil {
			return err
		}
		printResult(g, res)
		return nil
	})
}

func (b *BuildCmd) request(rt *Runtime, id pkgid.ID) build.Request {
	return build.Request{
		Workspace: rt.Workspace,
		ID:        id,
		HackMode:  rt.Config.HackMode,
		Cfgs:      slices.Concat(rt.Config.Cfgs, b.Cfg),
		Force:     b.Force,
	}
}

func printResult(g *Global, res *build.Result) {
	_, _ = fmt.Fprintf(g.Out, "%s %s\n", res.Status, res.ID)
	_, _ = fmt.Fprintf(g.Out, "  start dir:   %s\n", res.StartDir)
	_, _ = fmt.Fprintf(g.Out, "  destination: %s\n", res.Destination)
	for _, cat := range pkgsrc.Categories {
		if n := res.Units[cat]; n > 0 {
			_, _ = fmt.Fprintf(g.Out, "  %-11s  %d\n", cat.String()+":", n)
		}
	}
	if res.PackageScript != "" {
		_, _ = fmt.Fprintf(g.Out, "  script:      %s\n", res.PackageScript)
	}
	_, _ = fmt.Fprintf(g.Out, "  duration:    %s\n", res.Duration.Round(time.Millisecond))
}
