// date.go implements date and date-range validation for audit and listing
// filters.

package validate

import (
	"fmt"
	"strings"
	"time"
)

var dateLayouts = []string{time.DateOnly, time.RFC3339, "2006-01-02T15:04:05"}

// Date parses an ISO 8601 date (2024-01-31) or timestamp (2024-01-31T09:00:00Z).
func Date(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, Field(field, ErrMissingArgument)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, Field(field, fmt.Errorf("%w: %q is not an ISO 8601 date (want YYYY-MM-DD)", ErrInvalidDate, s))
}

// OptionalDate is Date but returns the zero time for an empty string.
func OptionalDate(field, s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	return Date(field, s)
}

// DateRange rejects a start that falls after the end. Zero bounds are open.
func DateRange(fromField string, from time.Time, toField string, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return nil
	}
	if from.After(to) {
		return Field(fromField, fmt.Errorf("%w: %s is after %s (%s)", ErrInvalidRange,
			from.Format(time.DateOnly), toField, to.Format(time.DateOnly)))
	}
	return nil
}
