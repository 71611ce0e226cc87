// Package session provides the tab-scoped key/value persistence that holds the
// encoded credential, the refresh credential and the resolved role.
//
// # Stores
//
// [MemoryStore] lives as long as the process (the "tab"). [RedisStore] keeps the
// same three fields under a per-tab key prefix with a sliding TTL, so a shell
// that restarts inside the TTL picks its session back up.
//
// # Architecture boundaries
//
// This package stores strings. It does NOT decode credentials, interpret
// roles, or decide whether a session is valid; those responsibilities belong
// to the Manager, which is the only writer.
//
// # What this package must NOT do
//
//   - Import goAset, codec, jwt, or backend (no upward imports).
//   - Store a plaintext access credential (callers pass the encoded form).
package session
