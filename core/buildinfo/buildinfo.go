// Package buildinfo carries values stamped at link time:
//
//	-X 'github.com/m3rciful/habitbot/core/buildinfo.Version=v0.3.0'
//	-X 'github.com/m3rciful/habitbot/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/m3rciful/habitbot/core/buildinfo.Date=2026-10-19T08:00:00Z'
package buildinfo

var (
	// Version is the release tag.
	Version = "dev"
	// Commit is the source revision.
	Commit = "local"
	// Date is the build timestamp in RFC3339.
	Date = ""
)
