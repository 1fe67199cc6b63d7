// Package pkgid models package identifiers: a slash-separated namespace path, the
// short display name taken from its last segment, and an optional version.
//
// The textual form is path[#version], for example
//
//	github.com/acme/widgets#v1.2.0
//	github.com/acme/widgets/codec
//
// Identifiers are immutable values. Prefixes enumerates every proper prefix of the
// path, longest first, which is what sub-package resolution walks.
package pkgid
