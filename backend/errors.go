package backend

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized matches any *StatusError carrying HTTP 401.
	ErrUnauthorized = errors.New("backend: unauthorized")
	// ErrUnexpectedStatus matches every *StatusError.
	ErrUnexpectedStatus = errors.New("backend: unexpected status")
	// ErrTransport wraps network failures and timeouts.
	ErrTransport = errors.New("backend: transport failure")
	// ErrMalformedBody reports a 2xx response whose body could not be used.
	ErrMalformedBody = errors.New("backend: malformed response body")
)

// StatusError is a non-2xx response. Message is the backend's "message"
// field when the body carried one.
type StatusError struct {
	Op      string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend %s: %d %s: %s", e.Op, e.Status, http.StatusText(e.Status), e.Message)
	}
	return fmt.Sprintf("backend %s: %d %s", e.Op, e.Status, http.StatusText(e.Status))
}

// Is lets errors.Is match ErrUnexpectedStatus, and ErrUnauthorized for 401.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUnexpectedStatus:
		return true
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	}
	return false
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}
