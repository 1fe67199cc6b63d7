package pkgsrc

import (
	"fmt"

	"git.home.luguber.info/inful/pkgbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/pkgbuild/internal/pkgid"
)

// Reasons carried by NonexistentPackageError.
const (
	ReasonNotFound      = "supplied path for package dir does not exist, and couldn't interpret it as a URL fragment"
	ReasonNotADirectory = "supplied path for package dir is a non-directory"
)

// NonexistentPackageError reports that no source directory could be resolved.
type NonexistentPackageError struct {
	ID     pkgid.ID
	Reason string
}

func (e *NonexistentPackageError) Error() string {
	return fmt.Sprintf("nonexistent package %s: %s", e.ID, e.Reason)
}

func (e *NonexistentPackageError) Category() errors.ErrorCategory { return errors.CategoryNotFound }

// NotADirectory reports whether the package path exists but is not a directory.
func (e *NonexistentPackageError) NotADirectory() bool { return e.Reason == ReasonNotADirectory }

// MissingBuildFilesError reports a package source without any build unit.
type MissingBuildFilesError struct {
	ID pkgid.ID
}

func (e *MissingBuildFilesError) Error() string {
	return fmt.Sprintf("no build files found for package %s", e.ID)
}

func (e *MissingBuildFilesError) Category() errors.ErrorCategory { return errors.CategoryPackage }

// NotAWorkspaceError reports a package root lacking the workspace layout outside hack mode.
type NotAWorkspaceError struct {
	Path string
}

func (e *NotAWorkspaceError) Error() string {
	return fmt.Sprintf("package root %s is not a workspace; pass --hack if you want to treat it as a package source", e.Path)
}

func (e *NotAWorkspaceError) Category() errors.ErrorCategory { return errors.CategoryWorkspace }
