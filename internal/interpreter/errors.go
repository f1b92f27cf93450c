package interpreter

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptySource is returned when a run is requested for a blank buffer.
var ErrEmptySource = errors.New("source code is empty")

// StatusError is a non-2xx response from the remote service.
type StatusError struct {
	Code int
	// Status is the service's symbolic status, e.g. RESOURCE_EXHAUSTED.
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("status %d (%s): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("status %d: %s", e.Code, e.Message)
}

// StatusCode returns the HTTP status.
func (e *StatusError) StatusCode() int {
	return e.Code
}

// AuthError means the credential is missing or was rejected. It is never
// retried; callers should send the user back to credential setup.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return "authorization failed: " + e.Err.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// MalformedResponseError means the response text did not satisfy the verdict
// contract.
type MalformedResponseError struct {
	Raw string
	// Missing lists mandatory fields that were absent or had the wrong type.
	Missing []string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	switch {
	case len(e.Missing) > 0:
		return "malformed response: missing or invalid fields: " + strings.Join(e.Missing, ", ")
	case e.Err != nil:
		return "malformed response: " + e.Err.Error()
	default:
		return "malformed response"
	}
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// authMarkers are substrings the service uses for rejected credentials.
var authMarkers = []string{
	"Requested entity was not found",
	"API key not valid",
}

// IsAuthError reports whether err indicates an invalid or missing credential,
// either as an *AuthError or through one of the service's credential messages.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return true
	}
	msg := err.Error()
	for _, m := range authMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
