// Package paths provides path resolution utilities.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// Expand resolves a user supplied path from configuration.
//
//   - "~" and "~/x" are expanded against the home directory
//   - $VAR and ${VAR} references are expanded from the environment
//   - the result is cleaned; "" stays ""
//
// When the home directory is unavailable "~" is left in place.
func Expand(path string) string {
	if path == "" {
		return ""
	}
	path = os.ExpandEnv(path)

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return filepath.Clean(path)
}
