// Package validate checks tool arguments before anything is sent to RSpace.
//
// This package enforces the rules the remote API would otherwise reject
// late or not at all: well-formed dates, ordered date ranges, non-empty tag
// sets, page sizes within bounds and download paths that stay inside the
// configured directory. Each function returns nil on success or an error
// wrapping ErrInvalidArgument.
//
// # Error Handling
//
// Errors that concern a single argument are *FieldError values naming that
// argument:
//
//	var fe *validate.FieldError
//	if errors.As(err, &fe) {
//	    fmt.Println("bad argument:", fe.Field)
//	}
//
// All of them satisfy errors.Is(err, validate.ErrInvalidArgument).
package validate
