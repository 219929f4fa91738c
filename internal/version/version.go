// Package version carries the build metadata raindrop-mcp reports in its
// initialize response, startup log line, and healthz payload. Release builds
// stamp Version, Commit, and BuildDate via -ldflags; a plain `go build` stays
// a dev build.
package version

import (
	"runtime"
	"time"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = time.Now().Format(time.RFC3339) // fallback for unstamped builds
	GoVersion = runtime.Version()
)
