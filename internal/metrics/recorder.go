package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultCanceled ResultLabel = "canceled"
)

// BuildOutcomeLabel enumerates final build outcomes.
type BuildOutcomeLabel string

const (
	BuildOutcomeSuccess BuildOutcomeLabel = "success"
	BuildOutcomeCached  BuildOutcomeLabel = "cached"
	BuildOutcomeFailed  BuildOutcomeLabel = "failed"
)

// Stage names a step of a build run.
type Stage string

const (
	StageLocate   Stage = "locate"
	StageDiscover Stage = "discover"
	StageCompile  Stage = "compile"
)

// Recorder defines observability hooks for resolution and build metrics.
type Recorder interface {
	ObserveStageDuration(stage Stage, d time.Duration)
	IncStageResult(stage Stage, result ResultLabel)
	// IncResolveStrategy counts which locator strategy produced a source directory.
	IncResolveStrategy(strategy string)
	ObserveFetchDuration(d time.Duration, success bool)
	// IncFetchResult counts fetch attempts by mode (local|remote|skipped).
	IncFetchResult(mode string, success bool)
	ObserveUnitDuration(kind string, d time.Duration)
	IncCacheResult(hit bool)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcomeLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(Stage, time.Duration) {}
func (NoopRecorder) IncStageResult(Stage, ResultLabel) {}
func (NoopRecorder) IncResolveStrategy(string) {}
func (NoopRecorder) ObserveFetchDuration(time.Duration, bool) {}
func (NoopRecorder) IncFetchResult(string, bool) {}
func (NoopRecorder) ObserveUnitDuration(string, time.Duration) {}
func (NoopRecorder) IncCacheResult(bool) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel) {}

// OrNoop returns r, or NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
