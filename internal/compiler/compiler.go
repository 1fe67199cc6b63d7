// Package compiler invokes the external compiler for one build unit.
package compiler

import (
	"context"

	"git.home.luguber.info/inful/pkgbuild/internal/pkgid"
	"git.home.luguber.info/inful/pkgbuild/internal/workcache"
)

// OutputKind is what a unit compiles to.
type OutputKind string

const (
	Library    OutputKind = "library"
	Executable OutputKind = "executable"
	Test       OutputKind = "test"
	Benchmark  OutputKind = "benchmark"
)

// Request describes one unit compilation.
type Request struct {
	ID pkgid.ID
	// Source is the absolute path of the unit's entry file.
	Source string
	// Destination is the workspace receiving build output.
	Destination string
	Flags       []string
	Cfgs        []string
	Kind        OutputKind
	// Exec, when set, receives the produced artifact as a discovered output.
	Exec *workcache.Exec
}

// Compiler compiles a unit and returns the artifact path.
type Compiler interface {
	Compile(ctx context.Context, req Request) (string, error)
}
