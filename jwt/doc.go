// Package jwt extracts the claims segment of a bearer credential without
// verifying its signature. The subject it yields is advisory: it picks which
// account's role to fetch and is never a trust boundary.
package jwt
