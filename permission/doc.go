// Package permission defines the closed role set, a role registry that maps
// roles to bit positions, and the View Gate that filters navigation entries by
// role.
//
// # Architecture boundaries
//
// This package is a pure in-memory data structure with no I/O beyond parsing
// the embedded canonical menu. [VisibleEntries] has no side effects and is
// safe to call from any goroutine.
//
// # What this package must NOT do
//
//   - Access the session store, the backend, or the network.
//   - Import goAset, session, or backend.
//   - Fail open: an empty or unknown role never sees a role-restricted entry.
package permission
