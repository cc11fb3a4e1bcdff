//go:build !windows

// path_unix.go provides Unix-specific path normalisation (Linux, macOS, etc).
//
// On Unix systems, backslashes are valid filename characters, not path separators.
// Therefore filepath.ToSlash does NOT convert them. We must explicitly replace
// backslashes to handle Windows-style paths an LLM may send.

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

	// Explicitly convert backslashes (filepath.ToSlash won't do this on Unix)
	p = strings.ReplaceAll(p, "\\", "/")

	// Reject traversal before Clean can fold it away
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return "", ErrInvalid
		}
	}

	return validate(filepath.Clean(p))
}
