// Package goAset is the client session core of the asset-lending application:
// it logs a user in against the backend, persists the resulting credential,
// resolves the user's role and keeps the session alive with periodic refresh.
//
// A process builds one [Manager] through [Builder] and injects it into the
// views that need it. The Manager is the only writer of its [session.Store].
//
//	m, err := goAset.New().WithStore(store).Build()
//	if err != nil { ... }
//	switch m.Bootstrap(ctx) {
//	case goAset.StateAuthenticated:
//	    loop := m.StartRefreshLoop(ctx)
//	    defer loop.Stop()
//	}
//
// # Architecture boundaries
//
// goAset is the public surface. It exposes [Manager], [Builder], [Config] and
// value types (LoginResult, MetricsSnapshot, SessionEvent). Flow orchestration
// and event dispatch live under internal/; the wire client lives in backend,
// credential obfuscation in codec, claim extraction in jwt and the role-gated
// menu in permission.
//
// # What this package must NOT do
//
//   - Log, emit or return a credential in plaintext other than through
//     [Manager.Credential].
//   - Treat claims read from a credential as verified.
//   - Leave the store partially written after a failed operation.
//   - Perform I/O in Builder.Build.
package goAset
