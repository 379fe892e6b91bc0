// Package version holds the application version string.
package version

// Version is the application version. Overridden at build time via
// -ldflags "-X github.com/fundsetu/mfdata-backend/internal/version.Version=...".
var Version = "dev"
