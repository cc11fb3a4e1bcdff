// path.go confines downloads to a configured directory.
//
// Design: the requested path is normalised first (see internal/path), which
// rejects absolute paths and any ".." component, and is then joined to the
// root. The joined result is checked again so a symlink-free root can never
// be escaped.

package validate

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jpl-au/rspace-mcp/internal/path"
)

// DownloadPath resolves rel inside root and returns the absolute target.
//
// Validation rules:
//   - Empty paths rejected
//   - Null bytes rejected
//   - Absolute paths and ".." components rejected
func DownloadPath(field, root, rel string) (string, error) {
	if rel == "" {
		return "", Field(field, ErrMissingArgument)
	}
	if strings.ContainsRune(rel, 0) {
		return "", Field(field, fmt.Errorf("%w: null byte in path", ErrInvalidPath))
	}
	if filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") {
		return "", Field(field, fmt.Errorf("%w: %q must be relative to the download directory", ErrInvalidPath, rel))
	}
	norm, err := path.Normalise(rel)
	if err != nil {
		return "", Field(field, fmt.Errorf("%w: %q: %w", ErrInvalidPath, rel, err))
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve download directory: %w", err)
	}
	target := filepath.Join(absRoot, filepath.FromSlash(norm))
	if !path.Within(absRoot, target) {
		return "", Field(field, fmt.Errorf("%w: %q escapes the download directory", ErrInvalidPath, rel))
	}
	return target, nil
}
