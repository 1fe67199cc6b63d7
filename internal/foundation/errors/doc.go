// Package errors provides the classified error primitives used across pkgbuild.
//
// A ClassifiedError carries a category, a severity, a retry strategy and free-form
// context. Typed domain errors (for example the package resolution errors) do not
// embed ClassifiedError; they implement Categorized so the CLI adapter can still map
// them to exit codes.
//
//	err := errors.NewError(errors.CategoryFetch, "clone failed").
//		WithCause(cause).
//		WithContext("url", url).
//		Build()
package errors
