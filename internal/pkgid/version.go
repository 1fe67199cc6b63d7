package pkgid

import (
	"strings"

	"golang.org/x/mod/semver"
)

// VersionKind distinguishes how a version selects source.
type VersionKind int

const (
	// NoVersion means the default branch; it renders as DefaultVersion.
	NoVersion VersionKind = iota
	// Tagged is a semantic version resolved through a tag.
	Tagged
	// ExactRevision is anything else: a commit hash, a branch, a non-semver tag.
	ExactRevision
)

// DefaultVersion is the rendering of an unset version.
const DefaultVersion = "0.1"

func (k VersionKind) String() string {
	switch k {
	case Tagged:
		return "tagged"
	case ExactRevision:
		return "revision"
	default:
		return "none"
	}
}

// Version is an immutable package version.
type Version struct {
	kind VersionKind
	text string
}

// ParseVersion classifies raw version text. Empty input yields NoVersion.
func ParseVersion(raw string) Version {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return Version{}
	case semver.IsValid(raw) || semver.IsValid("v"+raw):
		return Version{kind: Tagged, text: raw}
	default:
		return Version{kind: ExactRevision, text: raw}
	}
}

// Kind reports the version kind.
func (v Version) Kind() VersionKind { return v.kind }

// IsSet reports whether an explicit version was given.
func (v Version) IsSet() bool { return v.kind != NoVersion }

// String returns the version as written, or DefaultVersion when unset.
func (v Version) String() string {
	if v.kind == NoVersion {
		return DefaultVersion
	}
	return v.text
}

// Canonical returns the canonical semantic version ("v1.2.0") for tagged versions
// and the raw text otherwise.
func (v Version) Canonical() string {
	if v.kind != Tagged {
		return v.String()
	}
	if semver.IsValid(v.text) {
		return semver.Canonical(v.text)
	}
	return semver.Canonical("v" + v.text)
}

// TagCandidates lists the tag names a tagged version may be published under,
// as written first.
func (v Version) TagCandidates() []string {
	if v.kind != Tagged {
		return nil
	}
	if trimmed, ok := strings.CutPrefix(v.text, "v"); ok {
		return []string{v.text, trimmed}
	}
	return []string{v.text, "v" + v.text}
}

// Compare orders two tagged versions by semantic precedence. Versions that are not
// tagged compare equal to each other and below any tagged version.
func (v Version) Compare(other Version) int {
	switch {
	case v.kind == Tagged && other.kind == Tagged:
		return semver.Compare(v.Canonical(), other.Canonical())
	case v.kind == Tagged:
		return 1
	case other.kind == Tagged:
		return -1
	default:
		return 0
	}
}
