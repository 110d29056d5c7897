package version

import "runtime/debug"

// Version information for tracelink
const (
	// Version is the current semantic version
	Version = "0.1.0"

	// BuildDate is set during build time (use -ldflags)
	BuildDate = "development"

	// GitCommit is set during build time (use -ldflags)
	GitCommit = "unknown"
)

// Info returns version information as a string
func Info() string {
	return Version
}

// FullInfo returns detailed version information, including the Go toolchain when known
func FullInfo() string {
	info := "tracelink " + Version + " (commit: " + GitCommit + ", built: " + BuildDate + ")"
	if bi, ok := debug.ReadBuildInfo(); ok {
		info += " " + bi.GoVersion
	}
	return info
}
