package flows

import (
	"context"
	"errors"

	"github.com/mansetdig/goAset/backend"
	"github.com/mansetdig/goAset/session"
)

type BootstrapBackend interface {
	CheckToken(ctx context.Context, token string) error
}

// BootstrapDeps captures startup re-validation dependencies. Refresh is the
// single refresh attempt allowed when the stored credential has expired.
type BootstrapDeps struct {
	Store            session.Store
	Backend          BootstrapBackend
	DecodeCredential func(string) (string, error)
	Refresh          func(context.Context) RefreshResult
}

// BootstrapResult is the startup decision. Credential is the plaintext
// credential in force when Authenticated is true.
type BootstrapResult struct {
	Authenticated bool
	Refreshed     bool
	Cleared       bool
	CheckStatus   int
	Failure       FailureKind
	Err           error
	Credential    string
}

// RunBootstrap re-validates a stored session.
//
//   - either credential absent: unauthenticated, no network call
//   - stored credential undecodable: clear
//   - token check 2xx: authenticated
//   - token check 401: one refresh; failure clears
//   - anything else: clear
//
// A context that ends during the exchange yields FailureCanceled and leaves
// the store untouched.
func RunBootstrap(ctx context.Context, deps BootstrapDeps) BootstrapResult {
	encoded, hasToken, err := deps.Store.Get(ctx, session.FieldToken)
	if err != nil {
		return BootstrapResult{Failure: FailureStore, Err: err}
	}
	_, hasRefresh, err := deps.Store.Get(ctx, session.FieldRefreshToken)
	if err != nil {
		return BootstrapResult{Failure: FailureStore, Err: err}
	}
	if !hasToken || !hasRefresh {
		return BootstrapResult{Failure: FailureMissing}
	}

	credential, err := deps.DecodeCredential(encoded)
	if err != nil {
		return clearAfter(ctx, deps.Store, BootstrapResult{Failure: FailureDecode, Err: err})
	}

	err = deps.Backend.CheckToken(ctx, credential)
	status := backend.StatusOf(err)
	switch {
	case err == nil:
		return BootstrapResult{Authenticated: true, Credential: credential}
	case ctx.Err() != nil:
		return BootstrapResult{Failure: FailureCanceled, Err: err}
	case errors.Is(err, backend.ErrUnauthorized):
		refreshed := deps.Refresh(ctx)
		if !refreshed.OK() && ctx.Err() != nil {
			return BootstrapResult{CheckStatus: status, Failure: FailureCanceled, Err: refreshed.Err}
		}
		if refreshed.OK() {
			return BootstrapResult{
				Authenticated: true,
				Refreshed:     true,
				CheckStatus:   status,
				Credential:    refreshed.AccessToken,
			}
		}
		return clearAfter(ctx, deps.Store, BootstrapResult{
			CheckStatus: status,
			Failure:     refreshed.Failure,
			Err:         refreshed.Err,
		})
	default:
		return clearAfter(ctx, deps.Store, BootstrapResult{
			CheckStatus: status,
			Failure:     classifyBackend(err),
			Err:         err,
		})
	}
}

func clearAfter(ctx context.Context, store session.Store, res BootstrapResult) BootstrapResult {
	if err := store.Clear(ctx); err != nil {
		res.Err = errors.Join(res.Err, err)
		return res
	}
	res.Cleared = true
	return res
}
