package git

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/pkgbuild/internal/foundation/errors"
)

// Typed clone errors enabling structured classification without string parsing upstream.
type AuthError struct {
	Op, URL string
	Err     error
}

func (e *AuthError) Error() string                  { return fmt.Sprintf("%s auth error for %s: %v", e.Op, e.URL, e.Err) }
func (e *AuthError) Unwrap() error                  { return e.Err }
func (e *AuthError) Category() errors.ErrorCategory { return errors.CategoryFetch }

type NotFoundError struct {
	Op, URL string
	Err     error
}

func (e *NotFoundError) Error() string                  { return fmt.Sprintf("%s not found %s: %v", e.Op, e.URL, e.Err) }
func (e *NotFoundError) Unwrap() error                  { return e.Err }
func (e *NotFoundError) Category() errors.ErrorCategory { return errors.CategoryFetch }

type UnsupportedProtocolError struct {
	Op, URL string
	Err     error
}

func (e *UnsupportedProtocolError) Error() string {
	return fmt.Sprintf("%s unsupported protocol %s: %v", e.Op, e.URL, e.Err)
}
func (e *UnsupportedProtocolError) Unwrap() error                  { return e.Err }
func (e *UnsupportedProtocolError) Category() errors.ErrorCategory { return errors.CategoryFetch }

type NetworkTimeoutError struct {
	Op, URL string
	Err     error
}

func (e *NetworkTimeoutError) Error() string {
	return fmt.Sprintf("%s network timeout %s: %v", e.Op, e.URL, e.Err)
}
func (e *NetworkTimeoutError) Unwrap() error                  { return e.Err }
func (e *NetworkTimeoutError) Category() errors.ErrorCategory { return errors.CategoryFetch }

// RevisionNotFoundError reports a version that names nothing in the cloned repository.
type RevisionNotFoundError struct {
	URL, Revision string
	Err           error
}

func (e *RevisionNotFoundError) Error() string {
	return fmt.Sprintf("revision %s not found in %s: %v", e.Revision, e.URL, e.Err)
}
func (e *RevisionNotFoundError) Unwrap() error                  { return e.Err }
func (e *RevisionNotFoundError) Category() errors.ErrorCategory { return errors.CategoryNotFound }

// classifyCloneError wraps go-git failures into typed variants when possible.
func classifyCloneError(url string, err error) error {
	if err == nil {
		return nil
	}
	l := strings.ToLower(err.Error())
	switch {
	case strings.Contains(l, "authentication") || strings.Contains(l, "auth fail") || strings.Contains(l, "invalid username or password"):
		return &AuthError{Op: "clone", URL: url, Err: err}
	case strings.Contains(l, "not found") || strings.Contains(l, "repository does not exist"):
		return &NotFoundError{Op: "clone", URL: url, Err: err}
	case strings.Contains(l, "unsupported protocol") || strings.Contains(l, "protocol not supported"):
		return &UnsupportedProtocolError{Op: "clone", URL: url, Err: err}
	case strings.Contains(l, "timeout") || strings.Contains(l, "i/o timeout"):
		return &NetworkTimeoutError{Op: "clone", URL: url, Err: err}
	default:
		return fmt.Errorf("failed to clone repository %s: %w", url, err)
	}
}
