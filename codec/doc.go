// Package codec obscures bearer credentials before they are written to a
// session store.
//
// # Format
//
// A ciphertext is standard base64 of magic "gaC1", a 24-byte random nonce and a
// NaCl secretbox. The box key is derived from the configured key string with
// HKDF-SHA256, so any key string length is accepted.
//
// # Architecture boundaries
//
// This is obfuscation at rest, not confidentiality. The key ships with the
// client and must not be relied on for access control.
//
// # What this package must NOT do
//
//   - Panic on any input to Decode.
//   - Import goAset, session, or backend.
package codec
