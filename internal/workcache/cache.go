package workcache

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pkgbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/pkgbuild/internal/logfields"
	"git.home.luguber.info/inful/pkgbuild/internal/metrics"
)

// Cache decides whether declared work must run again.
type Cache struct {
	store    *store // nil when caching is disabled
	recorder metrics.Recorder
	now      func() time.Time
}

// Open opens the cache database at dbPath.
func Open(dbPath string) (*Cache, error) {
	s, err := openStore(dbPath)
	if err != nil {
		return nil, errors.CacheError("failed to open work cache").
			WithCause(err).
			WithContext("path", dbPath).
			Build()
	}
	return &Cache{store: s, recorder: metrics.NoopRecorder{}, now: time.Now}, nil
}

// Disabled returns a cache that always runs work and stores nothing.
func Disabled() *Cache {
	return &Cache{recorder: metrics.NoopRecorder{}, now: time.Now}
}

// WithRecorder attaches a metrics recorder.
func (c *Cache) WithRecorder(r metrics.Recorder) *Cache { c.recorder = metrics.OrNoop(r); return c }

// Close releases the database.
func (c *Cache) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.close()
}

// Invalidate forgets the record for key so the next run executes.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	if c.store == nil {
		return nil
	}
	if err := c.store.delete(ctx, key); err != nil {
		return errors.CacheError("failed to invalidate work").WithCause(err).WithContext("key", key).Build()
	}
	return nil
}

// Prep runs fn with a preparation handle for key. fn declares inputs and calls Exec.
func (c *Cache) Prep(ctx context.Context, key string, fn func(*Prep) error) error {
	p := &Prep{cache: c, key: key, inputs: entrySet{}}
	return fn(p)
}

// Prep collects the inputs of one unit of work.
type Prep struct {
	cache    *Cache
	key      string
	inputs   entrySet
	executed bool
	cached   bool
}

// Key returns the work key.
func (p *Prep) Key() string { return p.key }

// DeclareInput registers an input; declaring the same kind and name again replaces
// its fingerprint.
func (p *Prep) DeclareInput(kind, name, fingerprint string) {
	slog.Debug("Declaring input", logfields.CacheKey(p.key), logfields.Kind(kind), logfields.Path(name))
	p.inputs.put(kind, name, fingerprint)
}

// Inputs returns the declared inputs sorted by kind and name.
func (p *Prep) Inputs() []Entry { return p.inputs.sorted() }

// Cached reports whether Exec returned a stored result without running.
func (p *Prep) Cached() bool { return p.cached }

// Exec runs fn unless a stored record has the same inputs and fresh outputs, in
// which case the stored result is returned. A successful run is recorded; a failed
// one leaves the previous record in place.
func (p *Prep) Exec(ctx context.Context, fn func(*Exec) (string, error)) (string, error) {
	if p.executed {
		return "", errors.InternalError("work already executed").WithContext("key", p.key).Build()
	}
	p.executed = true

	sig, err := signature(p.inputs.sorted())
	if err != nil {
		return "", errors.CacheError("failed to compute input signature").WithCause(err).Build()
	}

	c := p.cache
	if c.store != nil {
		rec, err := c.store.get(ctx, p.key)
		if err != nil {
			return "", errors.CacheError("failed to read work cache").WithCause(err).WithContext("key", p.key).Build()
		}
		if rec != nil && rec.InputsSig == sig && outputsFresh(rec.Outputs) {
			slog.Info("Work is up to date", logfields.CacheKey(p.key), logfields.BuildID(rec.BuildID))
			c.recorder.IncCacheResult(true)
			p.cached = true
			return rec.Result, nil
		}
	}
	c.recorder.IncCacheResult(false)

	e := &Exec{buildID: uuid.NewString(), outputs: entrySet{}}
	slog.Debug("Executing work", logfields.CacheKey(p.key), logfields.BuildID(e.buildID))
	result, err := fn(e)
	if err != nil {
		return "", err
	}
	if c.store != nil {
		rec := &record{
			Key:       p.key,
			InputsSig: sig,
			Outputs:   e.outputs.sorted(),
			Result:    result,
			BuildID:   e.buildID,
			UpdatedAt: c.now(),
		}
		if err := c.store.put(ctx, rec); err != nil {
			return "", errors.CacheError("failed to record work").WithCause(err).WithContext("key", p.key).Build()
		}
	}
	return result, nil
}

// outputsFresh re-digests recorded outputs by modification time.
func outputsFresh(outputs []Entry) bool {
	for _, o := range outputs {
		if DigestOnlyDate(o.Name) != o.Fingerprint {
			slog.Debug("Output is stale", logfields.Kind(o.Kind), logfields.Path(o.Name))
			return false
		}
	}
	return true
}

// Exec is the handle passed to running work.
type Exec struct {
	buildID string
	outputs entrySet
}

// BuildID identifies this execution.
func (e *Exec) BuildID() string { return e.buildID }

// DiscoverOutput records an artifact produced by the work.
func (e *Exec) DiscoverOutput(kind, path, fingerprint string) {
	e.outputs.put(kind, path, fingerprint)
}

// Outputs returns the discovered outputs sorted by kind and name.
func (e *Exec) Outputs() []Entry { return e.outputs.sorted() }
