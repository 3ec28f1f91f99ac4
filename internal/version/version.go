package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/arthur-debert/homebin/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/arthur-debert/homebin/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/arthur-debert/homebin/internal/version.Date={{.Date}}
)

// Info is the one-line version string of tool.
func Info(tool string) string {
	return tool + " version " + Version
}
