package flows

import (
	"context"

	"github.com/mansetdig/goAset/backend"
	"github.com/mansetdig/goAset/session"
)

type RefreshBackend interface {
	Refresh(ctx context.Context, refreshToken string) (*backend.TokenPair, error)
}

// RefreshDeps captures refresh flow dependencies. EncodeRefresh and
// DecodeRefresh are identity functions when the refresh credential is stored
// as issued.
type RefreshDeps struct {
	Store            session.Store
	Backend          RefreshBackend
	EncodeCredential func(string) (string, error)
	EncodeRefresh    func(string) (string, error)
	DecodeRefresh    func(string) (string, error)
}

// RefreshResult carries the new credential or failure metadata.
type RefreshResult struct {
	Failure     FailureKind
	Err         error
	Status      int
	AccessToken string
	Rotated     bool
}

// OK reports whether the refresh succeeded.
func (r RefreshResult) OK() bool {
	return r.Failure == FailureNone
}

// RunRefresh exchanges the stored refresh credential for a new access
// credential and persists the result. Nothing is written unless the backend
// answered with a usable pair and every value encoded cleanly.
func RunRefresh(ctx context.Context, deps RefreshDeps) RefreshResult {
	stored, ok, err := deps.Store.Get(ctx, session.FieldRefreshToken)
	if err != nil {
		return RefreshResult{Failure: FailureStore, Err: err}
	}
	if !ok || stored == "" {
		return RefreshResult{Failure: FailureMissing}
	}

	refreshToken, err := deps.DecodeRefresh(stored)
	if err != nil {
		return RefreshResult{Failure: FailureDecode, Err: err}
	}

	pair, err := deps.Backend.Refresh(ctx, refreshToken)
	if err != nil {
		return RefreshResult{Failure: classifyBackend(err), Err: err, Status: backend.StatusOf(err)}
	}

	encodedAccess, err := deps.EncodeCredential(pair.AccessToken)
	if err != nil {
		return RefreshResult{Failure: FailureEncode, Err: err}
	}
	var encodedRefresh string
	if pair.RefreshToken != "" {
		if encodedRefresh, err = deps.EncodeRefresh(pair.RefreshToken); err != nil {
			return RefreshResult{Failure: FailureEncode, Err: err}
		}
	}

	if err := deps.Store.Set(ctx, session.FieldToken, encodedAccess); err != nil {
		return RefreshResult{Failure: FailureStore, Err: err}
	}
	if encodedRefresh != "" {
		if err := deps.Store.Set(ctx, session.FieldRefreshToken, encodedRefresh); err != nil {
			return RefreshResult{Failure: FailureStore, Err: err}
		}
	}

	return RefreshResult{
		Failure:     FailureNone,
		AccessToken: pair.AccessToken,
		Rotated:     encodedRefresh != "",
	}
}
