package build

import (
	"context"
	stderrors "errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/pkgbuild/internal/compiler"
	"git.home.luguber.info/inful/pkgbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/pkgbuild/internal/logfields"
	"git.home.luguber.info/inful/pkgbuild/internal/metrics"
	"git.home.luguber.info/inful/pkgbuild/internal/observability"
	"git.home.luguber.info/inful/pkgbuild/internal/pkgsrc"
	"git.home.luguber.info/inful/pkgbuild/internal/workcache"
)

// DefaultService is the standard implementation of Service.
type DefaultService struct {
	locator          *pkgsrc.Locator
	cache            *workcache.Cache
	compiler         compiler.Compiler
	defaultWorkspace string
	recover          func(*pkgsrc.NotAWorkspaceError) (string, bool)
	recorder         metrics.Recorder
}

// NewService creates a service. A nil cache disables caching.
func NewService(locator *pkgsrc.Locator, cache *workcache.Cache, c compiler.Compiler) *DefaultService {
	if cache == nil {
		cache = workcache.Disabled()
	}
	return &DefaultService{locator: locator, cache: cache, compiler: c, recorder: metrics.NoopRecorder{}}
}

// WithDefaultWorkspace sets where hack-mode builds write their output.
func (s *DefaultService) WithDefaultWorkspace(dir string) *DefaultService {
	s.defaultWorkspace = dir
	return s
}

// WithWorkspaceRecovery installs a substitute for package roots that are not workspaces.
func (s *DefaultService) WithWorkspaceRecovery(fn func(*pkgsrc.NotAWorkspaceError) (string, bool)) *DefaultService {
	s.recover = fn
	return s
}

// WithRecorder attaches a metrics recorder.
func (s *DefaultService) WithRecorder(r metrics.Recorder) *DefaultService {
	s.recorder = metrics.OrNoop(r)
	return s
}

// Run executes the build pipeline.
func (s *DefaultService) Run(ctx context.Context, req Request) (*Result, error) {
	startTime := time.Now()
	result := &Result{StartTime: startTime, Status: StatusFailed}
	ctx = observability.WithRunID(ctx, startTime.Format("20060102-150405"))
	ctx = observability.WithPackage(ctx, req.ID.String())

	fail := func(err error) (*Result, error) {
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(startTime)
		s.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
		s.recorder.ObserveBuildDuration(result.Duration)
		observability.ErrorContext(ctx, "Build failed", logfields.Error(err))
		return result, err
	}

	if req.ID.IsZero() {
		return fail(errors.ValidationError("package identifier required").Build())
	}
	root, err := filepath.Abs(req.Workspace)
	if err != nil {
		return fail(errors.FileSystemError("failed to resolve workspace").WithCause(err).WithContext("workspace", req.Workspace).Build())
	}

	// Stage 1: locate
	stageStart := time.Now()
	stageCtx := observability.WithStage(ctx, string(metrics.StageLocate))
	loc := *s.locator
	loc.HackMode = req.HackMode
	src, err := loc.Locate(stageCtx, root, req.ID)
	s.stageDone(metrics.StageLocate, stageStart, err)
	if err != nil {
		return fail(err)
	}
	result.ID = src.ID
	result.StartDir = src.StartDir
	observability.InfoContext(stageCtx, "Located package source", logfields.StartDir(src.StartDir))
	if script, ok := src.PackageScript(); ok {
		result.PackageScript = script
		observability.InfoContext(stageCtx, "Package has a custom build script", logfields.Path(script))
	}

	// Stage 2: discover
	stageStart = time.Now()
	err = src.FindUnits()
	s.stageDone(metrics.StageDiscover, stageStart, err)
	if err != nil {
		return fail(err)
	}
	result.Units = make(map[pkgsrc.Category]int, len(pkgsrc.Categories))
	for _, cat := range pkgsrc.Categories {
		result.Units[cat] = len(src.Units(cat))
	}

	// Stage 3: compile through the work cache
	stageStart = time.Now()
	stageCtx = observability.WithStage(ctx, string(metrics.StageCompile))
	key := CacheKey(src.ID, root)
	if req.Force {
		if err := s.cache.Invalidate(stageCtx, key); err != nil {
			return fail(err)
		}
	}
	bctx := pkgsrc.BuildContext{
		Compiler:         s.compiler,
		HackMode:         req.HackMode,
		DefaultWorkspace: s.defaultWorkspace,
		RecoverWorkspace: s.recover,
	}
	err = s.cache.Prep(stageCtx, key, func(p *workcache.Prep) error {
		src.DeclareInputs(p)
		p.DeclareInput(InputKindValue, InputCfgs, strings.Join(req.Cfgs, "\x00"))
		dest, err := p.Exec(stageCtx, func(e *workcache.Exec) (string, error) {
			return src.Build(stageCtx, e, bctx, req.Cfgs)
		})
		result.Destination = dest
		result.Cached = p.Cached()
		return err
	})
	s.stageDone(metrics.StageCompile, stageStart, err)
	if err != nil {
		return fail(err)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)
	result.Status = StatusSuccess
	outcome := metrics.BuildOutcomeSuccess
	if result.Cached {
		result.Status = StatusCached
		outcome = metrics.BuildOutcomeCached
	}
	s.recorder.IncBuildOutcome(outcome)
	s.recorder.ObserveBuildDuration(result.Duration)
	observability.InfoContext(ctx, "Build complete",
		logfields.Workspace(result.Destination),
		slog.Bool("cached", result.Cached),
		logfields.DurationMS(float64(result.Duration.Milliseconds())))
	return result, nil
}

func (s *DefaultService) stageDone(stage metrics.Stage, start time.Time, err error) {
	s.recorder.ObserveStageDuration(stage, time.Since(start))
	res := metrics.ResultSuccess
	switch {
	case err == nil:
	case stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded):
		res = metrics.ResultCanceled
	default:
		res = metrics.ResultFailed
	}
	s.recorder.IncStageResult(stage, res)
}
