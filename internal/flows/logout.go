package flows

import (
	"context"

	"github.com/mansetdig/goAset/session"
)

// LogoutDeps captures logout dependencies. Logout is local only.
type LogoutDeps struct {
	Store session.Store
}

// RunLogout removes every session field.
func RunLogout(ctx context.Context, deps LogoutDeps) error {
	return deps.Store.Clear(ctx)
}
