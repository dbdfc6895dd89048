// Package vars holds build-time variables populated via the linker (ldflags).
package vars

import (
	"fmt"
	"io"
	"os"
	"time"
)

var (
	// Name of the project
	Name = "dzstatus"

	// Version of application (git tag), e.g. v1.2.3
	Version = "dev"

	// Commit is the current git commit, full or short git SHA
	Commit = "unknown"

	// BuildTime is the time of start build app, RFC3339 UTC
	BuildTime = time.Unix(0, 0).UTC()

	// URL to repository (https)
	URL = "https://github.com/woozymasta/dzstatus"

	_buildTime string
)

// BuildInfo exposes build metadata over the API.
type BuildInfo struct {
	// betteralign:ignore

	Name      string    `json:"name" example:"dzstatus"`
	Version   string    `json:"version" example:"v1.2.3"`
	Commit    string    `json:"commit" example:"da15c17"`
	BuildTime time.Time `json:"build_time,omitempty" example:"1970-01-01T00:00:00Z"`
	URL       string    `json:"url,omitempty" example:"https://github.com/woozymasta/dzstatus"`
}

func init() {
	if _buildTime != "" {
		if t, err := time.Parse(time.RFC3339, _buildTime); err == nil {
			BuildTime = t.UTC()
		}
	}
}

// Print writes the build information to the standard output.
func Print() {
	Fprint(os.Stdout)
}

// Fprint writes the build information to w.
func Fprint(w io.Writer) {
	_, _ = fmt.Fprintf(w, `name:     %s
url:      %s
version:  %s
commit:   %s
built:    %s
`, Name, URL, Version, CommitShort(), BuildTime.Format(time.RFC3339))
}

// Ver returns the build information served by the version endpoint.
func Ver() BuildInfo {
	return BuildInfo{
		Name:      Name,
		Version:   Version,
		Commit:    CommitShort(),
		BuildTime: BuildTime,
		URL:       URL,
	}
}

// CommitShort returns the first 7 characters of the git commit hash.
func CommitShort() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}

	return Commit
}
