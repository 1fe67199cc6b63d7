package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type typedErr struct{}

func (typedErr) Error() string            { return "typed" }
func (typedErr) Category() ErrorCategory { return CategoryWorkspace }

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "pkgbuild.yaml").
			Build()

		require.Equal(t, CategoryConfig, err.Category())
		require.Equal(t, SeverityFatal, err.Severity())
		require.Equal(t, "invalid configuration", err.Message())

		file, ok := err.Context().GetString("file")
		require.True(t, ok)
		require.Equal(t, "pkgbuild.yaml", file)
	})

	t.Run("Wrapping keeps cause", func(t *testing.T) {
		cause := stderrors.New("disk full")
		err := WrapError(cause, CategoryFileSystem, "write failed").Build()
		require.ErrorIs(t, err, cause)
		require.Contains(t, err.Error(), "disk full")
	})

	t.Run("Category through wrapping", func(t *testing.T) {
		inner := FetchError("clone failed").Build()
		wrapped := fmt.Errorf("fetch: %w", inner)
		require.True(t, HasCategory(wrapped, CategoryFetch))
		c, ok := AsClassified(wrapped)
		require.True(t, ok)
		require.True(t, c.CanRetry())
	})

	t.Run("Typed domain errors", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", typedErr{})
		require.Equal(t, CategoryWorkspace, GetCategory(err))
		require.Equal(t, CategoryInternal, GetCategory(stderrors.New("plain")))
	})
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name     string
		builder  *ErrorBuilder
		category ErrorCategory
		severity ErrorSeverity
		retry    RetryStrategy
	}{
		{"ConfigError", ConfigError("test"), CategoryConfig, SeverityFatal, RetryNever},
		{"ValidationError", ValidationError("test"), CategoryValidation, SeverityFatal, RetryNever},
		{"FetchError", FetchError("test"), CategoryFetch, SeverityError, RetryBackoff},
		{"BuildError", BuildError("test"), CategoryBuild, SeverityFatal, RetryNever},
		{"CacheError", CacheError("test"), CategoryCache, SeverityError, RetryNever},
		{"InternalError", InternalError("test"), CategoryInternal, SeverityFatal, RetryNever},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.builder.Build()
			require.Equal(t, tt.category, err.Category())
			require.Equal(t, tt.severity, err.Severity())
			require.Equal(t, tt.retry, err.RetryStrategy())
		})
	}
}

func TestErrorContextMerge(t *testing.T) {
	a := ErrorContext{}.Set("key1", "value1").Set("shared", "original")
	b := ErrorContext{}.Set("key2", "value2").Set("shared", "overridden")

	merged := a.Merge(b)
	v, _ := merged.GetString("shared")
	require.Equal(t, "overridden", v)
	require.Len(t, merged, 3)
}

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, nil)

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, 0},
		{"validation", ValidationError("bad id").Build(), 2},
		{"package", NewError(CategoryPackage, "missing").Build(), 3},
		{"typed workspace", typedErr{}, 4},
		{"config", ConfigError("bad").Build(), 7},
		{"fetch", FetchError("clone").Build(), 8},
		{"build", BuildError("compile").Build(), 11},
		{"unclassified", stderrors.New("boom"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	err := BuildError("compile failed").WithCause(stderrors.New("exit status 1")).Build()

	quiet := NewCLIErrorAdapter(false, nil)
	require.Equal(t, "Error: compile failed", quiet.FormatError(err))

	verbose := NewCLIErrorAdapter(true, nil)
	require.Contains(t, verbose.FormatError(err), "exit status 1")
}
