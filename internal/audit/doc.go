// Package audit dispatches session lifecycle events asynchronously.
//
// # Components
//
//   - [Sink]: interface for event consumers (channel, JSON lines, slog, no-op).
//   - [Dispatcher]: buffered relay with drop-if-full or block-if-full semantics.
//   - [Event]: record with timestamp, type, request id, subject, role and state.
//
// # Architecture boundaries
//
// This package owns buffering and sink delivery. It does NOT decide which
// events to emit; the Manager does.
//
// # What this package must NOT do
//
//   - Filter or suppress events based on business logic.
//   - Import goAset or any sibling internal package.
//   - Carry credentials in any event field.
package audit
