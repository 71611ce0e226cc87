package flows

import (
	"context"
	"errors"

	"github.com/mansetdig/goAset/backend"
	"github.com/mansetdig/goAset/permission"
	"github.com/mansetdig/goAset/session"
)

// ErrRoleAbsent is the degradation cause when the account has no role.
var ErrRoleAbsent = errors.New("account record has no role")

// RoleSource records where a resolved role came from.
type RoleSource int

const (
	RoleFromBackend RoleSource = iota
	RoleFromCache
	RoleFromDefault
)

func (s RoleSource) String() string {
	switch s {
	case RoleFromBackend:
		return "backend"
	case RoleFromCache:
		return "cache"
	default:
		return "default"
	}
}

type RoleBackend interface {
	GetAccount(ctx context.Context, token string) (*backend.Account, error)
	GetUser(ctx context.Context, token, username string) (*backend.Account, error)
}

// RoleDeps captures role resolution dependencies.
type RoleDeps struct {
	Store   session.Store
	Backend RoleBackend
	Warn    func(string, ...any)
}

// RoleResult is always usable: Role is never empty. Cause is the reason the
// backend role was not used, StoreErr a failure to persist the result.
type RoleResult struct {
	Role     permission.Role
	Source   RoleSource
	Cause    error
	StoreErr error
}

// Degraded reports whether the backend role was not used.
func (r RoleResult) Degraded() bool {
	return r.Source != RoleFromBackend
}

// RunResolveRole fetches the role for subject (or for the credential's own
// account when subject is empty), falls back to the cached role and then to
// the default role, and persists whatever it chose.
func RunResolveRole(ctx context.Context, credential, subject string, deps RoleDeps) RoleResult {
	warn := deps.Warn
	if warn == nil {
		warn = func(string, ...any) {}
	}

	cached, _, err := deps.Store.Get(ctx, session.FieldRole)
	if err != nil {
		warn("goAset: cached role unreadable", "err", err)
		cached = ""
	}

	var (
		acct     *backend.Account
		fetchErr error
	)
	if subject != "" {
		acct, fetchErr = deps.Backend.GetUser(ctx, credential, subject)
	} else {
		acct, fetchErr = deps.Backend.GetAccount(ctx, credential)
	}

	res := RoleResult{Source: RoleFromBackend}
	if fetchErr == nil && acct != nil {
		res.Role = permission.ParseRole(acct.Role)
	}
	if res.Role == "" {
		res.Cause = fetchErr
		if res.Cause == nil {
			res.Cause = ErrRoleAbsent
		}
		if c := permission.ParseRole(cached); c != "" {
			res.Role, res.Source = c, RoleFromCache
		} else {
			res.Role, res.Source = permission.DefaultRole, RoleFromDefault
		}
		warn("goAset: role resolution degraded",
			"source", res.Source.String(),
			"status", backend.StatusOf(fetchErr),
			"err", res.Cause,
		)
	}

	if err := deps.Store.Set(ctx, session.FieldRole, res.Role.String()); err != nil {
		res.StoreErr = err
		warn("goAset: persist role failed", "err", err)
	}
	return res
}
