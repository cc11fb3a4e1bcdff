// Package path provides normalisation for relative file paths supplied by
// tool callers, such as the destination of a file download.
//
// Security: Path traversal is blocked by rejecting any path containing "..".
// Callers join the normalised path to a trusted root and confirm the result
// with Within.
//
// Normalisation rules:
//   - Paths use forward slashes (Windows-compatible)
//   - No leading or trailing slashes
//   - No "." or ".." components
//   - Empty paths are rejected
package path

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrInvalid indicates the provided path is invalid.
var ErrInvalid = errors.New("invalid relative path")

// Within reports whether target is root itself or lies beneath it.
// Both arguments should be absolute and cleaned.
func Within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// validate applies the rules shared by every platform's Normalise.
func validate(p string) (string, error) {
	p = strings.TrimPrefix(p, "/")
	p = strings.TrimSuffix(p, "/")

	if p == "" || p == "." || p == ".." {
		return "", ErrInvalid
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return "", ErrInvalid
		}
	}
	return p, nil
}
