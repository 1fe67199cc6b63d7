package commands

import (
	"log/slog"
	"os"
	"path/filepath"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/pkgbuild/internal/build"
	"git.home.luguber.info/inful/pkgbuild/internal/compiler"
	"git.home.luguber.info/inful/pkgbuild/internal/config"
	"git.home.luguber.info/inful/pkgbuild/internal/fetch"
	"git.home.luguber.info/inful/pkgbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/pkgbuild/internal/git"
	"git.home.luguber.info/inful/pkgbuild/internal/logfields"
	"git.home.luguber.info/inful/pkgbuild/internal/metrics"
	"git.home.luguber.info/inful/pkgbuild/internal/pkgsrc"
	"git.home.luguber.info/inful/pkgbuild/internal/retry"
	"git.home.luguber.info/inful/pkgbuild/internal/workcache"
	"git.home.luguber.info/inful/pkgbuild/internal/workspace"
)

// Runtime holds the collaborators assembled from configuration for one command.
type Runtime struct {
	Config           *config.Config
	Workspace        string
	DefaultWorkspace string
	SearchPath       []string
	// CachePath is the work cache database, empty when caching is disabled.
	CachePath string

	Registry *prom.Registry
	Recorder *metrics.PrometheusRecorder
	Fetcher  *fetch.Fetcher
	Locator  *pkgsrc.Locator
	Cache    *workcache.Cache
	Compiler *compiler.CommandCompiler
	Service  *build.DefaultService
}

// NewRuntime wires the components described by cfg.
func NewRuntime(cfg *config.Config) (*Runtime, error) {
	root, err := filepath.Abs(cfg.Workspace)
	if err != nil {
		return nil, errors.FileSystemError("failed to resolve workspace").
			WithCause(err).
			WithContext("workspace", cfg.Workspace).
			Build()
	}
	searchPath := workspace.SearchPath(cfg.SearchPath)
	resolveDefault := workspace.ResolveDefaultWorkspace
	if cfg.HackMode {
		resolveDefault = workspace.DefaultWorkspace
	}
	defaultWS, err := resolveDefault(cfg.DefaultWorkspace, searchPath)
	if err != nil {
		if cfg.HackMode {
			return nil, err
		}
		slog.Warn("No default workspace available", logfields.Error(err))
		defaultWS = ""
	}

	reg := prom.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)

	policy := retry.FromConfig(cfg.Fetch.Retry)
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	client := git.NewClient().WithRetryPolicy(policy).WithShallowDepth(cfg.Fetch.ShallowDepth)
	fetcher := fetch.New(client).WithTempDir(cfg.TempDir).WithRecorder(rec)

	locator := pkgsrc.NewLocator(fetcher)
	locator.HackMode = cfg.HackMode
	locator.SearchPath = searchPath
	locator.Recorder = rec

	cache, cachePath, err := openCache(cfg, root, defaultWS)
	if err != nil {
		return nil, err
	}
	cache.WithRecorder(rec)

	comp := compiler.NewCommandCompiler(cfg.Compiler).WithRecorder(rec)
	svc := build.NewService(locator, cache, comp).
		WithDefaultWorkspace(defaultWS).
		WithRecorder(rec)

	return &Runtime{
		Config:           cfg,
		Workspace:        root,
		DefaultWorkspace: defaultWS,
		SearchPath:       searchPath,
		CachePath:        cachePath,
		Registry:         reg,
		Recorder:         rec,
		Fetcher:          fetcher,
		Locator:          locator,
		Cache:            cache,
		Compiler:         comp,
		Service:          svc,
	}, nil
}

// openCache opens the work cache; relative database paths live in the workspace
// that receives build output.
func openCache(cfg *config.Config, root, defaultWS string) (*workcache.Cache, string, error) {
	if cfg.Cache.Disabled {
		return workcache.Disabled(), "", nil
	}
	dbPath := cfg.Cache.Database
	if !filepath.IsAbs(dbPath) {
		base := root
		if cfg.HackMode && !workspace.IsWorkspace(root) && defaultWS != "" {
			base = defaultWS
		}
		dbPath = filepath.Join(base, dbPath)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, "", errors.CacheError("failed to create cache directory").
			WithCause(err).
			WithContext("path", dbPath).
			Build()
	}
	slog.Debug("Opening work cache", logfields.Path(dbPath))
	cache, err := workcache.Open(dbPath)
	return cache, dbPath, err
}

// Close flushes metrics and releases the cache.
func (r *Runtime) Close() error {
	var firstErr error
	if path := r.Config.Metrics.Textfile; path != "" {
		if err := metrics.WriteTextfile(r.Registry, path); err != nil {
			firstErr = err
		} else {
			slog.Debug("Wrote metrics", logfields.Path(path))
		}
	}
	if err := r.Cache.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// withRuntime loads configuration, assembles a runtime and closes it after fn.
func withRuntime(root *CLI, fn func(*Runtime) error) (err error) {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	rt, err := NewRuntime(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(rt)
}
