package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/pkgbuild/internal/pkgid"
	"git.home.luguber.info/inful/pkgbuild/internal/pkgsrc"
)

// Service is the canonical interface for building a package.
type Service interface {
	// Run executes locate → discover → declare inputs → compile.
	Run(ctx context.Context, req Request) (*Result, error)
}

// Request contains all inputs required to build one package.
type Request struct {
	// Workspace is the workspace root the package is resolved in.
	Workspace string

	ID pkgid.ID

	// HackMode treats the workspace root as the package directory.
	HackMode bool

	// Cfgs are global configuration tags merged into every unit.
	Cfgs []string

	// Force discards the cached record before running.
	Force bool
}

// Result contains the outcome of a build.
type Result struct {
	Status Status

	// ID is the resolved identifier; it differs from the request after prefix resolution.
	ID pkgid.ID

	StartDir    string
	Destination string

	// Units counts discovered units per category.
	Units map[pkgsrc.Category]int

	// PackageScript is the custom build script, when the package has one.
	PackageScript string

	// Cached reports that the stored result was reused.
	Cached bool

	Duration  time.Duration
	StartTime time.Time
	EndTime   time.Time
}

// Status represents the outcome of a build execution.
type Status string

const (
	StatusSuccess Status = "success"
	StatusCached  Status = "cached"
	StatusFailed  Status = "failed"
)

// IsSuccess returns true if the build completed successfully.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess || s == StatusCached
}

// Non-file inputs declared with every build.
const (
	InputKindValue = "value"
	InputCfgs      = "cfgs"
)

// CacheKey is the work cache key for a resolved package in a workspace.
func CacheKey(id pkgid.ID, workspace string) string {
	return "build:" + id.String() + "@" + workspace
}
