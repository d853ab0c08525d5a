package api

import (
	"errors"
	"fmt"
)

// Error taxonomy for backend responses. Every failed call returns an *Error
// wrapping exactly one of these sentinels, so callers can branch with
// errors.Is while still seeing the server's message.
var (
	// ErrAuthExpired is any 401. The client has already fired its
	// invalidation hook by the time a caller sees this.
	ErrAuthExpired = errors.New("authentication expired")
	// ErrForbidden is a 403: the role does not permit the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is a 404.
	ErrNotFound = errors.New("not found")
	// ErrRateLimited is a 429 that survived the retry budget.
	ErrRateLimited = errors.New("rate limited")
	// ErrValidation is any other 4xx; the server's message is authoritative.
	ErrValidation = errors.New("validation failed")
	// ErrUnknown covers 5xx and anything unclassifiable.
	ErrUnknown = errors.New("request failed")
)

// Error carries the HTTP status and the server-provided message alongside
// the taxonomy sentinel.
type Error struct {
	StatusCode int
	Message    string
	kind       error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (status %d): %s", e.kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s (status %d)", e.kind, e.StatusCode)
}

func (e *Error) Unwrap() error { return e.kind }

// newError classifies an HTTP status into the taxonomy.
func newError(status int, message string) *Error {
	var kind error
	switch {
	case status == 401:
		kind = ErrAuthExpired
	case status == 403:
		kind = ErrForbidden
	case status == 404:
		kind = ErrNotFound
	case status == 429:
		kind = ErrRateLimited
	case status >= 400 && status < 500:
		kind = ErrValidation
	default:
		kind = ErrUnknown
	}
	return &Error{StatusCode: status, Message: message, kind: kind}
}

// Message extracts the server-provided message from err, or "" if err is not
// an *Error. Views show this verbatim for validation failures.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
