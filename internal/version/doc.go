// Package version exposes build metadata of the station binaries.
//
// Version, Commit and BuildTime are injected with -ldflags at build time and
// default to development values for local builds.
package version
