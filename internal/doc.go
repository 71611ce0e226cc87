// Package internal holds the pieces of goAset that are not part of its
// public API.
//
// # Sub-packages
//
//   - audit: asynchronous session event dispatch (Dispatcher and Sink implementations)
//   - flows: stateless orchestrators for each Manager operation
//
// # What this package must NOT do
//
//   - Export types that appear in the public goAset API.
//   - Be imported by any package outside the goAset module.
package internal
