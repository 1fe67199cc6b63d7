package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration(StageLocate, 150*time.Millisecond)
	pr.IncStageResult(StageLocate, ResultSuccess)
	pr.IncResolveStrategy("prefix")
	pr.ObserveFetchDuration(time.Second, false)
	pr.IncFetchResult("remote", false)
	pr.ObserveUnitDuration("library", 20*time.Millisecond)
	pr.IncCacheResult(true)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncBuildOutcome(BuildOutcomeCached)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	for _, want := range []string{
		"pkgbuild_stage_duration_seconds",
		"pkgbuild_resolve_strategy_total",
		"pkgbuild_fetch_results_total",
		"pkgbuild_cache_results_total",
		"pkgbuild_build_outcomes_total",
	} {
		require.True(t, names[want], "missing %s", want)
	}
}

func TestWriteTextfile(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).IncResolveStrategy("candidate")

	path := filepath.Join(t.TempDir(), "nested", "pkgbuild.prom")
	require.NoError(t, WriteTextfile(reg, path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `pkgbuild_resolve_strategy_total{strategy="candidate"} 1`)
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	require.NotPanics(t, func() {
		pr.IncCacheResult(false)
		pr.ObserveBuildDuration(time.Second)
	})
}
