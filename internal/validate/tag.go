// tag.go implements tag validation.
//
// Separated from path.go because tags have different rules - they're labels,
// not locations. RSpace stores ELN tags as one comma-separated string, so a
// comma inside a tag would silently split it in two on the way back.

package validate

import (
	"fmt"
	"strings"
)

// Tag validates a single tag string.
//
// Validation rules:
//   - Empty or whitespace-only tags rejected (meaningless label)
//   - Null bytes rejected
//   - Commas rejected (would not survive the comma-separated wire format)
func Tag(t string) error {
	if strings.TrimSpace(t) == "" {
		return fmt.Errorf("%w: empty tag", ErrInvalidTag)
	}
	if strings.ContainsRune(t, 0) {
		return fmt.Errorf("%w: null byte in tag", ErrInvalidTag)
	}
	if strings.ContainsRune(t, ',') {
		return fmt.Errorf("%w: %q contains a comma", ErrInvalidTag, t)
	}
	return nil
}

// Tags validates a non-empty tag set and returns it trimmed and de-duplicated
// in first-seen order. Duplicates are found ignoring case.
func Tags(field string, tags []string) ([]string, error) {
	if len(tags) == 0 {
		return nil, Fieldf(field, "at least one tag is required")
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if err := Tag(t); err != nil {
			return nil, Field(field, err)
		}
		t = strings.TrimSpace(t)
		if key := strings.ToLower(t); !seen[key] {
			seen[key] = true
			out = append(out, t)
		}
	}
	return out, nil
}
