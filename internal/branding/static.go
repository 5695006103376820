// internal/branding/static.go
//
// Static asset reads for the footer themes.  Assets live under the
// configured static dir; requests are normalized so "../" cannot escape it.
package branding

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrBadAssetPath is returned when the requested name escapes the static
// root.
var ErrBadAssetPath = errors.New("branding: asset path escapes static dir")

// Static returns the contents of one js/css asset under dir.
func Static(dir, name string) ([]byte, error) {
	clean := filepath.Clean("/" + name) // force-rooted, then strip
	full := filepath.Join(dir, clean)

	// Join cleans again; re-check the prefix to stop traversal.
	root := filepath.Clean(dir) + string(filepath.Separator)
	if !strings.HasPrefix(full, root) {
		return nil, ErrBadAssetPath
	}
	return os.ReadFile(full)
}
