package commands

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/pkgbuild/internal/logfields"
	"git.home.luguber.info/inful/pkgbuild/internal/pkgid"
	"git.home.luguber.info/inful/pkgbuild/internal/watch"
	"git.home.luguber.info/inful/pkgbuild/internal/workspace"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	ID       string        `arg:"" name:"id" help:"Package identifier (path[#version])"`
	Cfg      []string      `name:"cfg" help:"Extra configuration tag passed to every unit (repeatable)"`
	Poll     time.Duration `help:"Also rebuild on this interval (0 disables)" default:"0s"`
	Debounce time.Duration `help:"Quiet period before a change triggers a rebuild" default:"500ms"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	id, err := pkgid.Parse(w.ID)
	if err != nil {
		return err
	}
	return withRuntime(root, func(rt *Runtime) error {
		b := BuildCmd{ID: w.ID, Cfg: w.Cfg}
		req := b.request(rt, id)

		// The first build resolves the start dir to watch and must succeed.
		res, err := rt.Service.Run(g.Ctx, req)
		if err != nil {
			return err
		}
		printResult(g, res)

		rebuild := func(ctx context.Context, reason string) {
			slog.Info("Rebuilding", logfields.PackageID(id.String()), slog.String("reason", reason))
			res, err := rt.Service.Run(ctx, req)
			if err != nil {
				slog.Error("Rebuild failed", logfields.PackageID(id.String()), logfields.Error(err))
				return
			}
			printResult(g, res)
		}
		watcher, err := watch.New(res.StartDir, rebuild, watchIgnores(rt)...)
		if err != nil {
			return err
		}
		watcher.WithDebounce(w.Debounce)

		if w.Poll > 0 {
			poller, err := watch.NewPoller(w.Poll, watcher.Trigger)
			if err != nil {
				return err
			}
			poller.Start()
			defer func() {
				if err := poller.Stop(); err != nil {
					slog.Warn("Failed to stop scheduler", logfields.Error(err))
				}
			}()
		}

		slog.Info("Watching for changes", logfields.StartDir(res.StartDir))
		return watcher.Run(g.Ctx)
	})
}

// watchIgnores lists the paths pkgbuild itself writes: build output directories and
// the cache database files.
func watchIgnores(rt *Runtime) []string {
	ignore := []string{filepath.Join(rt.Workspace, workspace.BuildDir)}
	if rt.DefaultWorkspace != "" {
		ignore = append(ignore, filepath.Join(rt.DefaultWorkspace, workspace.BuildDir))
	}
	if rt.CachePath != "" {
		for _, suffix := range []string{"", "-journal", "-wal", "-shm"} {
			ignore = append(ignore, rt.CachePath+suffix)
		}
	}
	return ignore
}
