// Package assets provides access to embedded static files: the landing page template and default site content.
package assets

import (
	"embed"
)

//go:embed landing.html site.yaml
var embedFS embed.FS

// ReadFile returns the content of a specific file from the embedded assets by its name.
func ReadFile(name string) ([]byte, error) {
	return embedFS.ReadFile(name)
}
