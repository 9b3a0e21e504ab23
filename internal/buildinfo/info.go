// Package buildinfo carries version metadata stamped into the tally binary.
package buildinfo

import "fmt"

// Set via -ldflags "-X github.com/cleared-dev/tally/internal/buildinfo.Version=..." at release time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String formats the metadata for --version.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
