package goAset

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthRejected is matched by every *AuthError.
	ErrAuthRejected = errors.New("credentials rejected")
	// ErrTransport is matched by every *TransportError.
	ErrTransport = errors.New("backend unreachable")
	// ErrMalformedResponse reports a successful backend answer that could not be used.
	ErrMalformedResponse = errors.New("malformed backend response")
	// ErrNotAuthenticated is returned by accessors that need a stored credential.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSessionPersist reports a session store write that failed mid-operation.
	ErrSessionPersist = errors.New("session persist failed")
	// ErrManagerNotReady is returned by a nil or unbuilt Manager.
	ErrManagerNotReady = errors.New("manager not initialized")
	// ErrBuilderUsed is returned by a second call to Builder.Build.
	ErrBuilderUsed = errors.New("builder already used")
)

// DefaultRejectionMessage is shown when the backend rejects a login without
// saying why.
const DefaultRejectionMessage = "Invalid username or password"

// AuthError is a login the backend refused. Message is suitable for display.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("login rejected (%d): %s", e.Status, e.Message)
}

func (e *AuthError) Unwrap() error { return ErrAuthRejected }

// TransportError is a backend call that produced no response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: backend unreachable: %v", e.Op, e.Err)
}

// Unwrap exposes both ErrTransport and the underlying cause.
func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }
