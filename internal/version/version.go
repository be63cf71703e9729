// Package version holds build metadata injected via -ldflags:
//
//	-X 'github.com/olliecrow/claude_stats/internal/version.Version=...'
//	-X 'github.com/olliecrow/claude_stats/internal/version.CommitHash=...'
//	-X 'github.com/olliecrow/claude_stats/internal/version.BuildDate=...'
package version

var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// UserAgent identifies HTTP requests made by this build.
func UserAgent() string {
	return "claude-stats/" + Version
}

// String returns the full build description.
func String() string {
	return Version + " (" + CommitHash + ") built " + BuildDate
}
