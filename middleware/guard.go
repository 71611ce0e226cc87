package middleware

import (
	"context"
	"net/http"

	goAset "github.com/mansetdig/goAset"
	"github.com/mansetdig/goAset/permission"
)

// StateSource is what the guards read. *goAset.Manager satisfies it.
type StateSource interface {
	State() goAset.State
	Role(ctx context.Context) permission.Role
}

type roleContextKey struct{}

// RoleFromContext returns the role RequireRole admitted the request with.
func RoleFromContext(ctx context.Context) (permission.Role, bool) {
	role, ok := ctx.Value(roleContextKey{}).(permission.Role)
	return role, ok
}

// RequireAuthenticated redirects to loginPath unless the session is
// authenticated. While the session is still unknown the request is answered
// with 503 so that clients retry after bootstrap.
func RequireAuthenticated(src StateSource, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch stateOf(src) {
			case goAset.StateAuthenticated:
				next.ServeHTTP(w, r)
			case goAset.StateUnknown:
				notReady(w)
			default:
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
			}
		})
	}
}

// RedirectAuthenticated sends an authenticated session from a public page,
// such as the login form, to homePath.
func RedirectAuthenticated(src StateSource, homePath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch stateOf(src) {
			case goAset.StateAuthenticated:
				http.Redirect(w, r, homePath, http.StatusSeeOther)
			case goAset.StateUnknown:
				notReady(w)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// RequireRole answers 403 unless the session is authenticated with one of
// roles. An unresolved role is never admitted.
func RequireRole(src StateSource, roles ...permission.Role) func(http.Handler) http.Handler {
	allowed := make(map[permission.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if stateOf(src) != goAset.StateAuthenticated {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			role := src.Role(r.Context())
			if _, ok := allowed[role]; !ok || role == "" {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			ctx := context.WithValue(r.Context(), roleContextKey{}, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func stateOf(src StateSource) goAset.State {
	if src == nil {
		return goAset.StateUnauthenticated
	}
	return src.State()
}

func notReady(w http.ResponseWriter) {
	w.Header().Set("Retry-After", "1")
	http.Error(w, "session not ready", http.StatusServiceUnavailable)
}
