// Package middleware adapts a goAset session to HTTP routing.
//
// # Guards
//
//   - [RequireAuthenticated] keeps unauthenticated sessions on the login page.
//   - [RedirectAuthenticated] keeps authenticated sessions off it.
//   - [RequireRole] admits only the listed roles.
//
// Each guard reads a [StateSource], normally the process's *goAset.Manager.
//
// # What this package must NOT do
//
//   - Call the backend or touch the session store.
//   - Admit a request whose role has not been resolved.
package middleware
