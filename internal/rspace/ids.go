package rspace

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// globalID matches RSpace global ids such as SD1234, NB77 or SA12v3.
var globalID = regexp.MustCompile(`^([A-Za-z]{2})(\d+)(?:v\d+)?$`)

// ParseID accepts a numeric id ("1234") or a global id ("SD1234") and
// returns the numeric part.
func ParseID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidID)
	}
	digits := s
	if m := globalID.FindStringSubmatch(s); m != nil {
		digits = m[2]
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q (want a number or a global id like SD123)", ErrInvalidID, s)
	}
	return n, nil
}

// GlobalPrefix returns the two-letter type prefix of a global id, upper-cased,
// or "" if s is not a global id.
func GlobalPrefix(s string) string {
	m := globalID.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}
