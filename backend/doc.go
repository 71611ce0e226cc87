// Package backend is a typed HTTP client for the asset-lending API.
//
// Non-2xx responses become *StatusError, which matches ErrUnauthorized for
// 401 and ErrUnexpectedStatus for everything else. Network failures wrap
// ErrTransport and unusable 2xx bodies wrap ErrMalformedBody, so callers can
// classify any error with errors.Is.
package backend
