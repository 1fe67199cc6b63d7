// Package workcache is the incremental work cache behind package builds.
//
// Work is identified by a key. Before running it, the caller declares the inputs
// it depends on, each with a fingerprint. The cache stores the declared inputs,
// the outputs discovered while running and the textual result. A later run with an
// identical input set whose outputs are still fresh returns the stored result and
// skips the work.
//
//	err := cache.Prep(ctx, "build:"+id.String(), func(p *workcache.Prep) error {
//		p.DeclareInput("file", path, workcache.DigestFileWithDate(path))
//		result, err := p.Exec(ctx, func(e *workcache.Exec) (string, error) { ... })
//		...
//	})
//
// Records live in a SQLite database (modernc.org/sqlite).
package workcache
