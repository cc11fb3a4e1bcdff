// errors.go defines the errors returned for invalid tool arguments.
//
// Separated to centralise error definitions. Every validation failure wraps
// ErrInvalidArgument so callers can tell a bad request from a remote or
// transport failure with a single errors.Is check. FieldError carries the
// name of the offending argument so the caller can correct it.

package validate

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrMissingArgument = errors.New("missing required argument")
	ErrInvalidPath     = errors.New("invalid path")
	ErrInvalidTag      = errors.New("invalid tag")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidRange    = errors.New("invalid range")
)

// FieldError reports a problem with one named argument.
type FieldError struct {
	Field string
	Err   error
}

// Field wraps err as a FieldError for the named argument.
func Field(name string, err error) *FieldError {
	return &FieldError{Field: name, Err: err}
}

// Fieldf builds a FieldError from a format string, wrapping ErrInvalidArgument.
func Fieldf(name, format string, a ...any) *FieldError {
	return &FieldError{Field: name, Err: fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, a...))}
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

// Unwrap lets errors.Is see the underlying sentinel.
func (e *FieldError) Unwrap() error { return e.Err }

// Is reports every FieldError as an ErrInvalidArgument.
func (e *FieldError) Is(target error) bool { return target == ErrInvalidArgument }
