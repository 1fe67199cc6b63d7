package pkgid

import (
	"iter"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"git.home.luguber.info/inful/pkgbuild/internal/foundation/errors"
)

// ID identifies a versioned package.
type ID struct {
	path      string
	segments  []string
	shortName string
	version   Version
}

// Parse reads the path[#version] form.
func Parse(raw string) (ID, error) {
	p, v, _ := strings.Cut(strings.TrimSpace(raw), "#")
	return New(p, ParseVersion(v))
}

// New builds an identifier from a slash-separated path and a version.
func New(p string, v Version) (ID, error) {
	p = filepath.ToSlash(strings.TrimSpace(p))
	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") {
		return ID{}, errors.ValidationError("package identifier must be a relative path").
			WithContext("path", p).Build()
	}
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ID{}, errors.ValidationError("package identifier has an empty path").Build()
	}
	segments := strings.Split(p, "/")
	for _, s := range segments {
		if s == "" || s == "." || s == ".." {
			return ID{}, errors.ValidationError("package identifier has an invalid path segment").
				WithContext("path", p).
				WithContext("segment", s).
				Build()
		}
	}
	return ID{
		path:      p,
		segments:  segments,
		shortName: strings.TrimSuffix(segments[len(segments)-1], ".git"),
		version:   v,
	}, nil
}

// MustParse is Parse for literals known to be valid; it panics otherwise.
func MustParse(raw string) ID {
	id, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return id
}

// Path returns the slash-separated namespace path.
func (id ID) Path() string { return id.path }

// FilePath returns the namespace path in OS form, suitable for joining.
func (id ID) FilePath() string { return filepath.FromSlash(id.path) }

// Segments returns a copy of the path segments.
func (id ID) Segments() []string { return slices.Clone(id.segments) }

// ParentPath returns the path without its last segment ("" for single-segment paths).
func (id ID) ParentPath() string {
	dir := path.Dir(id.path)
	if dir == "." {
		return ""
	}
	return dir
}

// ShortName returns the display name taken from the last path segment.
func (id ID) ShortName() string { return id.shortName }

// Version returns the package version.
func (id ID) Version() Version { return id.version }

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool { return id.path == "" }

// VersionedDirName returns "<short_name>-<version>".
func (id ID) VersionedDirName() string {
	return id.shortName + "-" + id.version.String()
}

// String renders path-version, or the bare path when no version was given.
func (id ID) String() string {
	if !id.version.IsSet() {
		return id.path
	}
	return id.path + "-" + id.version.String()
}

// Equal compares path and version.
func (id ID) Equal(other ID) bool {
	return id.path == other.path && id.version == other.version
}

// Prefixes yields every proper prefix of the path, longest first, paired with the
// remaining slash-separated suffix. Prefix identifiers carry no version.
func (id ID) Prefixes() iter.Seq2[ID, string] {
	return func(yield func(ID, string) bool) {
		for i := len(id.segments) - 1; i > 0; i-- {
			prefix := ID{
				path:      strings.Join(id.segments[:i], "/"),
				segments:  slices.Clone(id.segments[:i]),
				shortName: strings.TrimSuffix(id.segments[i-1], ".git"),
			}
			if !yield(prefix, strings.Join(id.segments[i:], "/")) {
				return
			}
		}
	}
}
