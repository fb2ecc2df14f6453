package errors

import (
	"errors"
	"fmt"
)

var ErrNotAuthenticated = errors.New("not authenticated")
var ErrNotEnoughTickets = errors.New("not enough tickets available")
var ErrSubmissionInFlight = errors.New("a submission is already in flight")

// AuthErrorKind classifies login failures.
type AuthErrorKind int

const (
	AuthInvalidCredentials AuthErrorKind = iota
	AuthMalformed
	AuthUnreachable
)

// AuthError is returned by the auth client when a login attempt fails.
type AuthError struct {
	Kind AuthErrorKind
	Err  error
}

func (e *AuthError) Error() string {
	switch e.Kind {
	case AuthInvalidCredentials:
		return "invalid credentials"
	case AuthMalformed:
		return "malformed authentication response"
	case AuthUnreachable:
		if e.Err != nil {
			return fmt.Sprintf("authentication service unreachable: %v", e.Err)
		}
		return "authentication service unreachable"
	default:
		return "authentication failed"
	}
}

func (e *AuthError) Unwrap() error { return e.Err }

// ValidationError is produced client-side before any request is sent.
// It names the offending field so callers can highlight it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// APIError carries a non-2xx response from the backend. ServerMessage is the
// decoded message body when the backend provided one.
type APIError struct {
	Status        int
	ServerMessage string
}

func (e *APIError) Error() string {
	if e.ServerMessage != "" {
		return fmt.Sprintf("api error (status %d): %s", e.Status, e.ServerMessage)
	}
	return fmt.Sprintf("api error (status %d)", e.Status)
}

// Message returns the text shown to the user: the server's own message when
// present, otherwise a generic fallback.
func (e *APIError) Message() string {
	if e.ServerMessage != "" {
		return e.ServerMessage
	}
	return "Something went wrong. Please try again."
}

// NetworkError means no usable response arrived at all.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
