package git

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/pkgbuild/internal/logfields"
	"git.home.luguber.info/inful/pkgbuild/internal/pkgid"
	"git.home.luguber.info/inful/pkgbuild/internal/retry"
)

// Client performs versioned clones.
type Client struct {
	policy       retry.Policy
	shallowDepth int
	sleep        func(context.Context, time.Duration) error
}

// NewClient creates a client that never retries and clones full history.
func NewClient() *Client {
	return &Client{policy: retry.NoRetry(), sleep: sleepContext}
}

// WithRetryPolicy sets the backoff applied to remote clones (fluent helper).
func (c *Client) WithRetryPolicy(p retry.Policy) *Client { c.policy = p; return c }

// WithShallowDepth limits tag and default-branch clones to depth commits; 0 clones everything.
func (c *Client) WithShallowDepth(depth int) *Client { c.shallowDepth = depth; return c }

// CloneLocal clones the repository at src into dest. A failed attempt leaves no dest behind.
func (c *Client) CloneLocal(ctx context.Context, src, dest string, version pkgid.Version) error {
	slog.Debug("Cloning local repository", logfields.Path(src), slog.String("dest", dest), logfields.Version(version.String()))
	if err := c.clone(ctx, src, dest, version, 0); err != nil {
		if rmErr := os.RemoveAll(dest); rmErr != nil {
			slog.Warn("failed to remove partial clone", logfields.Path(dest), logfields.Error(rmErr))
		}
		return err
	}
	return nil
}

// CloneRemote clones url into dest, retrying transient failures. The caller owns dest
// cleanup on failure.
func (c *Client) CloneRemote(ctx context.Context, url, dest string, version pkgid.Version) error {
	slog.Debug("Cloning remote repository", logfields.URL(url), slog.String("dest", dest), logfields.Version(version.String()))
	return c.withRetry(ctx, "clone", url, func() error {
		if err := os.RemoveAll(dest); err != nil {
			return err
		}
		return c.clone(ctx, url, dest, version, c.shallowDepth)
	})
}

// clone dispatches on version kind. Local clones pass depth 0 since the in-process
// file transport serves full history only.
func (c *Client) clone(ctx context.Context, url, dest string, version pkgid.Version, depth int) error {
	switch version.Kind() {
	case pkgid.Tagged:
		return c.cloneTag(ctx, url, dest, version, depth)
	case pkgid.ExactRevision:
		return c.cloneRevision(ctx, url, dest, version)
	default:
		opts := &git.CloneOptions{URL: url, Depth: depth}
		repo, err := git.PlainCloneContext(ctx, dest, false, opts)
		if err != nil {
			return classifyCloneError(url, err)
		}
		logHead(repo, url, dest)
		return nil
	}
}

// cloneTag tries each spelling of a tagged version until one exists.
func (c *Client) cloneTag(ctx context.Context, url, dest string, version pkgid.Version, depth int) error {
	var lastErr error
	for _, tag := range version.TagCandidates() {
		opts := &git.CloneOptions{
			URL:           url,
			ReferenceName: plumbing.NewTagReferenceName(tag),
			SingleBranch:  true,
			Depth:         depth,
		}
		repo, err := git.PlainCloneContext(ctx, dest, false, opts)
		if err == nil {
			logHead(repo, url, dest)
			return nil
		}
		lastErr = err
		if !isMissingReference(err) {
			return classifyCloneError(url, err)
		}
		slog.Debug("tag not present", logfields.URL(url), slog.String("tag", tag))
		if rmErr := os.RemoveAll(dest); rmErr != nil {
			return rmErr
		}
	}
	return &RevisionNotFoundError{URL: url, Revision: version.String(), Err: lastErr}
}

// cloneRevision clones the full history and checks out the revision.
func (c *Client) cloneRevision(ctx context.Context, url, dest string, version pkgid.Version) error {
	repo, err := git.PlainCloneContext(ctx, dest, false, &git.CloneOptions{URL: url})
	if err != nil {
		return classifyCloneError(url, err)
	}
	rev := version.String()
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		// Branches other than the default only exist as remote-tracking refs.
		remoteHash, remoteErr := repo.ResolveRevision(plumbing.Revision("origin/" + rev))
		if remoteErr != nil {
			return &RevisionNotFoundError{URL: url, Revision: rev, Err: err}
		}
		hash = remoteHash
	}
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: *hash}); err != nil {
		return &RevisionNotFoundError{URL: url, Revision: rev, Err: err}
	}
	slog.Debug("Checked out revision", logfields.URL(url), logfields.Version(rev), slog.String("commit", hash.String()[:8]))
	return nil
}

func isMissingReference(err error) bool {
	var noMatch git.NoMatchingRefSpecError
	if errors.As(err, &noMatch) || errors.Is(err, plumbing.ErrReferenceNotFound) {
		return true
	}
	return strings.Contains(err.Error(), "couldn't find remote ref")
}

func logHead(repo *git.Repository, url, dest string) {
	if ref, err := repo.Head(); err == nil {
		slog.Info("Repository cloned successfully", logfields.URL(url), slog.String("commit", ref.Hash().String()[:8]), logfields.Path(dest))
		return
	}
	slog.Info("Repository cloned successfully", logfields.URL(url), logfields.Path(dest))
}
