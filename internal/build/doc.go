// Package build provides the canonical package build pipeline for pkgbuild.
// All execution paths (the build command, watch mode, tests) route through Service.
package build
