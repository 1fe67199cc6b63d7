// Package watch rebuilds a package when its source tree changes.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/pkgbuild/internal/logfields"
)

// DefaultDebounce coalesces bursts of file events into one rebuild.
const DefaultDebounce = 500 * time.Millisecond

// RebuildFunc is called for every coalesced change; reason is "change" or "schedule".
type RebuildFunc func(ctx context.Context, reason string)

// Watcher watches every directory below a root.
type Watcher struct {
	root     string
	ignore   []string
	debounce time.Duration
	rebuild  RebuildFunc
	fsw      *fsnotify.Watcher
	poke     chan struct{}
}

// New creates a watcher for root. Paths below any ignore entry produce no rebuilds.
func New(root string, rebuild RebuildFunc, ignore ...string) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watch root: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	ign := make([]string, 0, len(ignore))
	for _, p := range ignore {
		if a, err := filepath.Abs(p); err == nil {
			ign = append(ign, a)
		}
	}
	return &Watcher{
		root:     abs,
		ignore:   ign,
		debounce: DefaultDebounce,
		rebuild:  rebuild,
		fsw:      fsw,
		poke:     make(chan struct{}, 1),
	}, nil
}

// WithDebounce overrides the debounce interval.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// Trigger requests a rebuild outside the file event stream. It never blocks.
func (w *Watcher) Trigger() {
	select {
	case w.poke <- struct{}{}:
	default:
	}
}

// Run watches until ctx is done. Rebuilds run on the calling goroutine, one at a time.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.fsw.Close(); err != nil {
			slog.Warn("Error closing file watcher", logfields.Error(err))
		}
	}()
	if err := w.addTree(w.root); err != nil {
		return err
	}
	slog.Info("Watching for changes", logfields.Path(w.root), slog.Duration("debounce", w.debounce))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			slog.Debug("Change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			if ev.Op.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						slog.Warn("Failed to watch new directory", logfields.Path(ev.Name), logfields.Error(err))
					}
				}
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Error("Watcher error", logfields.Error(err))
		case <-fire:
			fire = nil
			w.rebuild(ctx, "change")
		case <-w.poke:
			w.rebuild(ctx, "schedule")
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	if w.ignored(ev.Name) {
		return false
	}
	return !strings.Contains(filepath.ToSlash(ev.Name), "/.git/") && filepath.Base(ev.Name) != ".git"
}

func (w *Watcher) ignored(path string) bool {
	for _, ign := range w.ignore {
		if path == ign || strings.HasPrefix(path, ign+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// addTree watches dir and every directory below it, skipping .git and ignored paths.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" || w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}
