// Package git clones package sources with go-git.
//
// A clone selects source by version kind: tagged versions clone the matching tag,
// exact revisions clone the full history and check the revision out, and an unset
// version takes the default branch. Remote clones retry transient failures using
// the configured backoff policy; local clones never retry.
package git
