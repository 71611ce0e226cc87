package flows

import (
	"errors"

	"github.com/mansetdig/goAset/backend"
)

// Deps groups flow dependency sets. The root manager builds this once and
// delegates each operation to the matching flow.
type Deps struct {
	Login     LoginDeps
	Bootstrap BootstrapDeps
	Refresh   RefreshDeps
	Role      RoleDeps
	Logout    LogoutDeps
}

// FailureKind classifies flow failures for root-level mapping.
type FailureKind int

const (
	FailureNone FailureKind = iota
	// FailureMissing means a required session field was absent.
	FailureMissing
	// FailureDecode means a stored value could not be decoded.
	FailureDecode
	// FailureEncode means a fresh credential could not be encoded.
	FailureEncode
	// FailureTransport covers network errors and timeouts.
	FailureTransport
	// FailureRejected is a non-2xx backend answer.
	FailureRejected
	// FailureMalformed is a 2xx answer that could not be used.
	FailureMalformed
	// FailureStore means the session store refused a read or write.
	FailureStore
	// FailureCanceled means the caller's context ended before the backend
	// answered. The session is left as it was.
	FailureCanceled
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureMissing:
		return "missing"
	case FailureDecode:
		return "decode"
	case FailureEncode:
		return "encode"
	case FailureTransport:
		return "transport"
	case FailureRejected:
		return "rejected"
	case FailureMalformed:
		return "malformed"
	case FailureStore:
		return "store"
	case FailureCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// classifyBackend maps a backend client error to a FailureKind.
func classifyBackend(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, backend.ErrUnexpectedStatus):
		return FailureRejected
	case errors.Is(err, backend.ErrMalformedBody):
		return FailureMalformed
	default:
		return FailureTransport
	}
}
