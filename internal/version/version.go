package version

import "fmt"

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/arthur-debert/lumina-project/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/arthur-debert/lumina-project/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/arthur-debert/lumina-project/internal/version.Date={{.Date}}
)

// Info is the build information in renderable form.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the build information.
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// String renders the build information for humans.
func (i Info) String() string {
	return fmt.Sprintf("lumina-project version %s\nCommit: %s\nBuilt:  %s", i.Version, i.Commit, i.Date)
}
