package pkgsrc

import "git.home.luguber.info/inful/pkgbuild/internal/compiler"

// Category classifies a build unit.
type Category int

const (
	Library Category = iota
	Executable
	Test
	Benchmark
)

// Categories lists every category in build order.
var Categories = [...]Category{Library, Executable, Test, Benchmark}

// unitFiles maps entry file names onto categories.
var unitFiles = map[string]Category{
	"lib.rs":   Library,
	"main.rs":  Executable,
	"test.rs":  Test,
	"bench.rs": Benchmark,
}

func (c Category) String() string {
	return string(c.OutputKind())
}

// OutputKind maps the category onto the compiler's output kind.
func (c Category) OutputKind() compiler.OutputKind {
	switch c {
	case Executable:
		return compiler.Executable
	case Test:
		return compiler.Test
	case Benchmark:
		return compiler.Benchmark
	default:
		return compiler.Library
	}
}

// BuildUnit is one compilable entry file.
type BuildUnit struct {
	// File is relative to the package start directory.
	File  string
	Flags []string
	Cfgs  []string
}
