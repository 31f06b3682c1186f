// Package version provides build version information for the application.
// This is a separate package to avoid import cycles between the cli and
// any future embedding surface.
package version

// Version is the build version string, set by ldflags during build.
// Format: vX.Y.Z or vX.Y.Z-dev for development builds.
var Version = "v1.0.0-dev"

// BuildTime is the build timestamp, set by ldflags during build.
var BuildTime = "unknown"
