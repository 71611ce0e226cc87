package flows

import (
	"context"
	"errors"

	"github.com/mansetdig/goAset/backend"
	"github.com/mansetdig/goAset/session"
)

type LoginBackend interface {
	Login(ctx context.Context, username, password string) (*backend.TokenPair, error)
}

// LoginDeps captures login flow dependencies. ResolveRole is invoked exactly
// once per successful exchange.
type LoginDeps struct {
	Store            session.Store
	Backend          LoginBackend
	EncodeCredential func(string) (string, error)
	EncodeRefresh    func(string) (string, error)
	ExtractSubject   func(string) string
	ResolveRole      func(ctx context.Context, credential, subject string) RoleResult
}

// LoginResult is the flow-local login outcome. Message is the backend's
// rejection message, if it sent one.
type LoginResult struct {
	Failure       FailureKind
	Err           error
	Status        int
	Message       string
	AccessToken   string
	RefreshIssued bool
	Subject       string
	Role          RoleResult
}

// RunLogin exchanges username and password for a credential, persists it,
// drops any cached role and resolves a fresh one.
//
// The store is untouched unless the backend issued a credential. Writes happen
// in order: credential, refresh credential, role removal, role.
func RunLogin(ctx context.Context, username, password string, deps LoginDeps) LoginResult {
	pair, err := deps.Backend.Login(ctx, username, password)
	if err != nil {
		res := LoginResult{Failure: classifyBackend(err), Err: err, Status: backend.StatusOf(err)}
		var se *backend.StatusError
		if errors.As(err, &se) {
			res.Message = se.Message
		}
		return res
	}

	encodedAccess, err := deps.EncodeCredential(pair.AccessToken)
	if err != nil {
		return LoginResult{Failure: FailureEncode, Err: err}
	}
	var encodedRefresh string
	if pair.RefreshToken != "" {
		if encodedRefresh, err = deps.EncodeRefresh(pair.RefreshToken); err != nil {
			return LoginResult{Failure: FailureEncode, Err: err}
		}
	}

	if err := deps.Store.Set(ctx, session.FieldToken, encodedAccess); err != nil {
		return LoginResult{Failure: FailureStore, Err: err}
	}
	// A refresh credential left behind by a previous account must not survive.
	if encodedRefresh != "" {
		err = deps.Store.Set(ctx, session.FieldRefreshToken, encodedRefresh)
	} else {
		err = deps.Store.Remove(ctx, session.FieldRefreshToken)
	}
	if err != nil {
		return LoginResult{Failure: FailureStore, Err: err}
	}
	if err := deps.Store.Remove(ctx, session.FieldRole); err != nil {
		return LoginResult{Failure: FailureStore, Err: err}
	}

	subject := ""
	if deps.ExtractSubject != nil {
		subject = deps.ExtractSubject(pair.AccessToken)
	}

	return LoginResult{
		Failure:       FailureNone,
		AccessToken:   pair.AccessToken,
		RefreshIssued: encodedRefresh != "",
		Subject:       subject,
		Role:          deps.ResolveRole(ctx, pair.AccessToken, subject),
	}
}
