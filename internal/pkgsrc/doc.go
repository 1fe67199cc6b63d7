// Package pkgsrc resolves package identifiers to source trees on disk, discovers
// their build units and drives unit compilation.
//
// Resolution tries, in order: the version-qualified and plain directories under
// the workspace's src/, an enclosing package found by path prefix (longest first),
// a git fetch into each candidate directory and, in hack mode, the search-path
// fallback. Units are discovered by exact file name: lib.rs, main.rs, test.rs and
// bench.rs. Building compiles libraries first, then executables, tests and
// benchmarks.
package pkgsrc
