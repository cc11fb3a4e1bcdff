//go:build windows

// path_windows.go provides Windows-specific path normalisation.
//
// On Windows, backslashes are native path separators. We use filepath.ToSlash
// which correctly converts them to forward slashes.

package path

import (
	"path/filepath"
	"strings"
)

// Normalise cleans and validates a relative path.
// It ensures paths use forward slashes, have no leading/trailing slashes,
// and contain no directory traversal sequences.
func Normalise(p string) (string, error) {
	if p == "" {
		return "", ErrInvalid
	}

	p = filepath.ToSlash(p)

	// Reject traversal before Clean can fold it away
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return "", ErrInvalid
		}
	}

	return validate(filepath.ToSlash(filepath.Clean(filepath.FromSlash(p))))
}
