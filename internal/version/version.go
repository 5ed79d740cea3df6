// Package version provides build-time version information.
//
// Variables are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/rickgao/ticket-exchange/internal/version.Version=1.0.0 \
//	                   -X github.com/rickgao/ticket-exchange/internal/version.Commit=$(git rev-parse --short HEAD)" \
//	         ./cmd/exchange ./cmd/agent
package version

import "runtime/debug"

// Build-time variables (set via ldflags)
var (
	// Version is the semantic version (e.g., "1.0.0")
	Version = "dev"

	// Commit is the git commit hash (short form). Falls back to the VCS
	// revision embedded by the Go toolchain.
	Commit = "unknown"
)

// String returns a formatted version string.
func String() string {
	return Version + " (" + commit() + ")"
}

func commit() string {
	if Commit != "unknown" {
		return Commit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Commit
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return s.Value[:7]
		}
	}
	return Commit
}
