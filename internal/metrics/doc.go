// Package metrics provides build and resolution metrics for pkgbuild.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection needs no nil checks at call sites:
//
//	locator := pkgsrc.NewLocator(fetcher).WithRecorder(recorder)
//
// PrometheusRecorder registers its collectors on a caller-supplied registry.
// A CLI invocation is short-lived, so the registry is exported in the node
// exporter textfile format with WriteTextfile instead of being served over HTTP.
package metrics
