// errors.go defines the error returned for non-2xx RSpace responses.
//
// Separated from client.go so callers can match on remote failures with
// errors.As without depending on transport details.

package rspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrInvalidID is returned when a record identifier cannot be parsed.
var ErrInvalidID = errors.New("invalid record id")

// APIError is a failure reported by the RSpace server.
type APIError struct {
	StatusCode int      `json:"httpCode"`
	Status     string   `json:"status,omitempty"`
	Message    string   `json:"message,omitempty"`
	Errors     []string `json:"errors,omitempty"`
	Method     string   `json:"method"`
	Path       string   `json:"path"`
}

// errorBody mirrors RSpace's JSON error envelope.
type errorBody struct {
	Status       string   `json:"status"`
	HTTPCode     int      `json:"httpCode"`
	InternalCode int      `json:"internalCode"`
	Message      string   `json:"message"`
	Errors       []string `json:"errors"`
}

func newAPIError(method, path string, code int, data []byte) *APIError {
	e := &APIError{StatusCode: code, Method: method, Path: path}

	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil && (body.Message != "" || body.Status != "") {
		e.Status = body.Status
		e.Message = body.Message
		e.Errors = body.Errors
	} else {
		e.Message = strings.TrimSpace(string(data))
	}
	if e.Status == "" {
		e.Status = strings.ToUpper(strings.ReplaceAll(http.StatusText(code), " ", "_"))
	}
	return e
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "rspace: %s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Status)
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if len(e.Errors) > 0 {
		b.WriteString(" (" + strings.Join(e.Errors, "; ") + ")")
	}
	return b.String()
}

// IsNotFound reports whether err is an RSpace 404.
func IsNotFound(err error) bool { return hasStatus(err, http.StatusNotFound) }

// IsUnauthorized reports whether err is an RSpace 401 or 403.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized) || hasStatus(err, http.StatusForbidden)
}

// IsRateLimited reports whether err is an RSpace 429.
func IsRateLimited(err error) bool { return hasStatus(err, http.StatusTooManyRequests) }

func hasStatus(err error, code int) bool {
	var e *APIError
	return errors.As(err, &e) && e.StatusCode == code
}
