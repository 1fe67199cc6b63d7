package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestContextRoundTrip(t *testing.T) {
	ctx := WithStage(WithPackage(WithRunID(context.Background(), "r1"), "a/b"), "locate")
	require.Equal(t, LogContext{RunID: "r1", PackageID: "a/b", Stage: "locate"}, FromContext(ctx))
	require.Equal(t, LogContext{}, FromContext(context.Background()))
}

func TestInfoContextIncludesAttrs(t *testing.T) {
	buf := captureLogs(t)
	ctx := WithStage(WithRunID(context.Background(), "r1"), "compile")

	InfoContext(ctx, "hello", slog.Int("units", 3))
	out := buf.String()
	require.Contains(t, out, "run.id=r1")
	require.Contains(t, out, "stage=compile")
	require.Contains(t, out, "units=3")

	buf.Reset()
	DebugContext(context.Background(), "plain")
	require.NotContains(t, buf.String(), "run.id")
}
