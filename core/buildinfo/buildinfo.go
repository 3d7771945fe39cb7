package buildinfo

import "time"

// These variables are intended to be set via -ldflags at build time:
//
//	-X 'github.com/m3rciful/sholatbot/core/buildinfo.Version=v1.2.3'
//	-X 'github.com/m3rciful/sholatbot/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/m3rciful/sholatbot/core/buildinfo.Date=2026-10-18T12:00:00Z'
//
// Default values are useful for local dev.
var (
	// Version reports the semantic version or tag of the build.
	Version = "dev"
	// Commit reports the source control commit used for the build.
	Commit = "local"
	// Date reports the build timestamp in RFC3339 format.
	Date = ""
)

var startedAt = time.Now()

// Uptime reports how long the process has been running.
func Uptime() time.Duration {
	return time.Since(startedAt)
}

// String renders version and commit in a compact human form.
func String() string {
	if Date == "" {
		return Version + " (" + Commit + ")"
	}
	return Version + " (" + Commit + ", " + Date + ")"
}
