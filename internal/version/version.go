// Package version carries the build version, overridable at link time:
//
//	go build -ldflags "-X hapsindex/internal/version.Version=v1.2.0" ./cmd/hapsindex
package version

var Version = "0.1.0-dev"
