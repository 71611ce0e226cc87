package goAset

import "github.com/mansetdig/goAset/permission"

// State is the externally observable authentication state.
type State int32

const (
	// StateUnknown is the initial state, before Bootstrap or Login completes.
	StateUnknown State = iota
	// StateUnauthenticated means no usable session is held.
	StateUnauthenticated
	// StateAuthenticated means a credential is held and was accepted.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// StateListener observes state transitions. Listeners run one at a time, in
// transition order, with no Manager lock held, and have run before the
// operation that caused the transition returns unless another goroutine was
// already delivering notifications. A listener may call any Manager method,
// for example Logout on a redirect; transitions it causes are delivered after
// it returns. It must not call RefreshLoop.Stop or Teardown, which wait for a
// refresh loop that may be the goroutine running the listener.
type StateListener func(prev, next State)

// RoleSource says where the role in force came from.
type RoleSource string

const (
	RoleSourceBackend RoleSource = "backend"
	RoleSourceCache   RoleSource = "cache"
	RoleSourceDefault RoleSource = "default"
)

// LoginResult describes a successful login.
type LoginResult struct {
	// Subject is the advisory subject read from the credential, if any.
	Subject string
	// Role is the role persisted for the session. It is never empty.
	Role permission.Role
	// RoleSource is RoleSourceDefault when role resolution degraded.
	RoleSource RoleSource
	// RefreshIssued reports whether the backend issued a refresh credential.
	RefreshIssued bool
}

// MetricsSnapshot is a point-in-time copy of every counter and histogram.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}
