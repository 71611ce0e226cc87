// Package flows contains pure-function orchestrators for every Manager operation.
//
// Each flow function (RunLogin, RunBootstrap, RunRefresh, RunResolveRole,
// RunLogout) accepts a typed dependency struct and returns a result value
// classifying success or failure. The Manager maps results onto state
// transitions, errors, metrics and events.
//
// # Architecture boundaries
//
// Flow functions coordinate the session store, the backend client, and the
// credential codec. They do NOT own any of these resources; ownership stays
// with the Manager, which also serializes calls.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goAset (to avoid import cycles).
//   - Change authentication state; flows only report outcomes.
package flows
