package goAset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/mansetdig/goAset/backend"
	"github.com/mansetdig/goAset/codec"
	"github.com/mansetdig/goAset/internal/audit"
	"github.com/mansetdig/goAset/internal/flows"
	"github.com/mansetdig/goAset/jwt"
	"github.com/mansetdig/goAset/permission"
	"github.com/mansetdig/goAset/session"
)

// Manager owns one client session: the persisted credential, refresh
// credential and role, and the authentication state derived from them. It is
// the only component that writes to its Store.
//
// All methods are safe for concurrent use. Bootstrap, Login, Refresh, Logout,
// Invalidate and ResolveRole are serialized; concurrent Login calls with the
// same credentials and concurrent Refresh or Bootstrap calls share one
// backend exchange, which runs until its last waiting caller leaves.
type Manager struct {
	config    Config
	store     session.Store
	codec     *codec.Codec
	client    *backend.Client
	flows     flows.Service
	menu      *permission.Menu
	logger    *slog.Logger
	metrics   *Metrics
	audit     *audit.Dispatcher
	listeners []StateListener

	state atomic.Int32
	opMu  sync.Mutex

	notifyMu  sync.Mutex
	pending   []notice
	notifying bool

	group    singleflight.Group
	flightMu sync.Mutex
	flights  map[string]*flight

	loopMu sync.Mutex
	loops  map[*RefreshLoop]struct{}
	torn   bool
}

type transition struct {
	prev, next State
}

type notice struct {
	ctx context.Context
	transition
}

// txn is the view of the manager held while opMu is locked.
type txn struct {
	m           *Manager
	transitions []transition
}

func (tx *txn) setState(next State) {
	prev := State(tx.m.state.Swap(int32(next)))
	if prev != next {
		tx.transitions = append(tx.transitions, transition{prev: prev, next: next})
	}
}

// locked runs fn under the operation lock and queues the transitions fn made.
// The queue is appended before opMu is released so that notifications of
// consecutive operations never reorder. Callers deliver the queue with drain
// once they hold no lock.
func (m *Manager) locked(ctx context.Context, fn func(tx *txn)) {
	m.opMu.Lock()
	tx := &txn{m: m}
	fn(tx)
	m.notifyMu.Lock()
	for _, t := range tx.transitions {
		m.pending = append(m.pending, notice{ctx: ctx, transition: t})
	}
	m.notifyMu.Unlock()
	m.opMu.Unlock()
}

// drain delivers queued transitions to listeners with no lock held. A drain
// already running on another goroutine, or further up this one, delivers
// them instead, so a listener may call back into the Manager.
func (m *Manager) drain() {
	m.notifyMu.Lock()
	if m.notifying {
		m.notifyMu.Unlock()
		return
	}
	m.notifying = true
	for len(m.pending) > 0 {
		n := m.pending[0]
		m.pending = m.pending[1:]
		m.notifyMu.Unlock()

		m.metrics.Inc(MetricStateTransition)
		m.emit(n.ctx, EventStateChanged, true, "", func(e *SessionEvent) {
			e.State = n.next.String()
			e.Metadata = map[string]string{"prev": n.prev.String()}
		})
		for _, l := range m.listeners {
			l(n.prev, n.next)
		}

		m.notifyMu.Lock()
	}
	m.notifying = false
	m.notifyMu.Unlock()
}

// flight is one coalesced operation. Its context carries the first caller's
// values but is cancelled only once every caller waiting on it has left.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
	run     func() (any, error)
}

// share runs fn once for all concurrent callers of key. Each caller waits
// for the shared result or its own ctx, whichever ends first.
func (m *Manager) share(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	m.flightMu.Lock()
	if m.flights == nil {
		m.flights = make(map[string]*flight)
	}
	f, ok := m.flights[key]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		f.run = func() (any, error) {
			v, err := fn(f.ctx)
			m.flightMu.Lock()
			m.retire(key, f)
			m.flightMu.Unlock()
			f.cancel()
			m.drain()
			return v, err
		}
		m.flights[key] = f
	}
	f.waiters++
	ch := m.group.DoChan(key, f.run)
	m.flightMu.Unlock()

	leave := func() {
		m.flightMu.Lock()
		f.waiters--
		if f.waiters == 0 {
			f.cancel()
			m.retire(key, f)
		}
		m.flightMu.Unlock()
	}

	select {
	case r := <-ch:
		leave()
		return r.Val, r.Err
	case <-ctx.Done():
		leave()
		return nil, ctx.Err()
	}
}

// retire stops new callers from joining f. flightMu must be held.
func (m *Manager) retire(key string, f *flight) {
	if m.flights[key] == f {
		delete(m.flights, key)
		m.group.Forget(key)
	}
}

func (m *Manager) ready() bool {
	return m != nil && m.flows.Initialized()
}

/*
====================================
LOGIN
====================================
*/

// Login exchanges username and password for a session. On success the state
// is StateAuthenticated and a role is always persisted, falling back to
// permission.DefaultRole when resolution degrades.
//
// A backend refusal returns *AuthError and leaves the store untouched. A
// network failure returns *TransportError; a 2xx answer without a credential
// wraps ErrMalformedResponse. A caller whose ctx ends first gets ctx.Err();
// the exchange is abandoned only when no other caller is still waiting on it.
func (m *Manager) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if !m.ready() {
		return nil, ErrManagerNotReady
	}
	ctx = ensureRequestID(ctx)

	v, err := m.share(ctx, loginKey(username, password), func(ctx context.Context) (any, error) {
		return m.login(ctx, username, password)
	})
	if err != nil {
		return nil, err
	}
	res := *v.(*LoginResult)
	return &res, nil
}

func loginKey(username, password string) string {
	sum := sha256.Sum256([]byte(password))
	return "login\x00" + username + "\x00" + hex.EncodeToString(sum[:])
}

func (m *Manager) login(ctx context.Context, username, password string) (res *LoginResult, err error) {
	m.locked(ctx, func(tx *txn) {
		out := m.flows.Login(ctx, username, password)
		switch out.Failure {
		case flows.FailureNone:
			tx.setState(StateAuthenticated)
			m.metrics.Inc(MetricLoginSuccess)
			m.recordRole(ctx, out.Role)
			res = &LoginResult{
				Subject:       out.Subject,
				Role:          out.Role.Role,
				RoleSource:    roleSource(out.Role.Source),
				RefreshIssued: out.RefreshIssued,
			}
			m.emit(ctx, EventLoginSuccess, true, "", func(e *SessionEvent) {
				e.Subject = out.Subject
				e.Role = out.Role.Role.String()
			})
			return

		case flows.FailureRejected:
			m.metrics.Inc(MetricLoginRejected)
			msg := out.Message
			if msg == "" {
				msg = DefaultRejectionMessage
			}
			err = &AuthError{Status: out.Status, Message: msg}
			if m.State() == StateUnknown {
				tx.setState(StateUnauthenticated)
			}
			m.emit(ctx, EventLoginRejected, false, out.Failure.String(), func(e *SessionEvent) {
				e.Metadata = map[string]string{"status": fmt.Sprint(out.Status)}
			})
			return

		case flows.FailureTransport:
			err = &TransportError{Op: "login", Err: out.Err}
		case flows.FailureMalformed:
			err = fmt.Errorf("%w: login: %v", ErrMalformedResponse, out.Err)
		case flows.FailureStore:
			// The credential may be half written; drop all of it.
			m.clearLocked(ctx, tx, "persist_failed")
			err = fmt.Errorf("%w: login: %w", ErrSessionPersist, out.Err)
		default:
			err = fmt.Errorf("login: %s: %w", out.Failure, out.Err)
		}
		m.metrics.Inc(MetricLoginFailure)
		m.logger.Warn("goAset: login failed", "op", "login", "failure", out.Failure.String(), "err", err)
		m.emit(ctx, EventLoginFailure, false, out.Failure.String(), nil)
	})
	return res, err
}

/*
====================================
BOOTSTRAP
====================================
*/

// Bootstrap re-validates the stored session, typically once at start-up, and
// returns the resulting state. Concurrent calls share one exchange. A caller
// whose ctx ends first gets the current state, which may still be
// StateUnknown; the session is not cleared on its behalf.
func (m *Manager) Bootstrap(ctx context.Context) State {
	if !m.ready() {
		return StateUnknown
	}
	ctx = ensureRequestID(ctx)

	v, err := m.share(ctx, "bootstrap", func(ctx context.Context) (any, error) {
		return m.bootstrap(ctx), nil
	})
	if err != nil {
		return m.State()
	}
	return v.(State)
}

func (m *Manager) bootstrap(ctx context.Context) State {
	var final State
	m.locked(ctx, func(tx *txn) {
		out := m.flows.Bootstrap(ctx)
		if out.Refreshed {
			m.metrics.Inc(MetricRefreshSuccess)
			m.emit(ctx, EventRefreshSuccess, true, "", nil)
		}

		if out.Failure == flows.FailureCanceled {
			final = m.State()
			return
		}
		if out.Authenticated {
			tx.setState(StateAuthenticated)
			m.metrics.Inc(MetricBootstrapAuthenticated)
			m.recordRole(ctx, m.flows.ResolveRole(ctx, out.Credential, jwt.SubjectOf(out.Credential)))
		} else {
			if out.Failure == flows.FailureStore {
				m.logger.Warn("goAset: bootstrap store failure", "op", "bootstrap", "err", out.Err)
			}
			if out.Cleared {
				m.metrics.Inc(MetricSessionCleared)
				m.emit(ctx, EventSessionCleared, true, out.Failure.String(), nil)
			}
			tx.setState(StateUnauthenticated)
			m.metrics.Inc(MetricBootstrapUnauthenticated)
		}

		final = m.State()
		m.emit(ctx, EventBootstrap, out.Authenticated, failureReason(out.Failure), func(e *SessionEvent) {
			if out.CheckStatus != 0 {
				e.Metadata = map[string]string{"check_status": fmt.Sprint(out.CheckStatus)}
			}
		})
	})
	return final
}

/*
====================================
REFRESH
====================================
*/

// Refresh exchanges the stored refresh credential for a new credential. It
// reports false on any failure and never returns an error. A failed Refresh
// leaves the session as it was, except when the store itself failed, in which
// case the session is cleared.
func (m *Manager) Refresh(ctx context.Context) bool {
	if !m.ready() {
		return false
	}
	ctx = ensureRequestID(ctx)

	v, err := m.share(ctx, "refresh", func(ctx context.Context) (any, error) {
		var ok bool
		m.locked(ctx, func(tx *txn) {
			ok = m.refreshLocked(ctx, tx, false)
		})
		return ok, nil
	})
	if err != nil {
		return false
	}
	return v.(bool)
}

// refreshLocked runs one refresh. With clearOnFailure any failed exchange
// ends the session, unless ctx ended during it. A session without a refresh
// credential is left alone.
func (m *Manager) refreshLocked(ctx context.Context, tx *txn, clearOnFailure bool) bool {
	out := m.flows.Refresh(ctx)
	if out.OK() {
		m.metrics.Inc(MetricRefreshSuccess)
		m.emit(ctx, EventRefreshSuccess, true, "", func(e *SessionEvent) {
			if out.Rotated {
				e.Metadata = map[string]string{"rotated": "true"}
			}
		})
		return true
	}
	if clearOnFailure && ctx.Err() != nil {
		return false
	}
	if clearOnFailure && out.Failure == flows.FailureMissing {
		// The backend never issued a refresh credential; the session stays.
		m.logger.Debug("goAset: refresh skipped, no refresh credential", "op", "refresh")
		return false
	}

	m.metrics.Inc(MetricRefreshFailure)
	m.logger.Warn("goAset: refresh failed", "op", "refresh", "failure", out.Failure.String(), "status", out.Status, "err", out.Err)
	m.emit(ctx, EventRefreshFailure, false, out.Failure.String(), nil)

	if clearOnFailure || out.Failure == flows.FailureStore {
		m.clearLocked(ctx, tx, "refresh_failed")
	}
	return false
}

// loopRefresh is one tick of a RefreshLoop. It does nothing unless the
// session is authenticated.
func (m *Manager) loopRefresh(ctx context.Context) {
	if ctx.Err() != nil || m.State() != StateAuthenticated {
		return
	}
	ctx = ensureRequestID(ctx)
	m.locked(ctx, func(tx *txn) {
		if ctx.Err() != nil || m.State() != StateAuthenticated {
			return
		}
		m.refreshLocked(ctx, tx, true)
	})
	m.drain()
}

/*
====================================
LOGOUT / INVALIDATE
====================================
*/

// Logout clears every persisted field and transitions to
// StateUnauthenticated. It makes no backend call.
func (m *Manager) Logout(ctx context.Context) error {
	if !m.ready() {
		return ErrManagerNotReady
	}
	ctx = ensureRequestID(ctx)

	var err error
	m.locked(ctx, func(tx *txn) {
		err = m.flows.Logout(ctx)
		tx.setState(StateUnauthenticated)
		m.metrics.Inc(MetricLogout)
		m.emit(ctx, EventLogout, err == nil, failureReason(storeFailure(err)), nil)
	})
	m.drain()
	if err != nil {
		return fmt.Errorf("%w: logout: %w", ErrSessionPersist, err)
	}
	return nil
}

// Invalidate ends a session the backend no longer accepts, for example after
// a 401 from a data endpoint.
func (m *Manager) Invalidate(ctx context.Context) error {
	if !m.ready() {
		return ErrManagerNotReady
	}
	ctx = ensureRequestID(ctx)

	var err error
	m.locked(ctx, func(tx *txn) {
		err = m.clearLocked(ctx, tx, "invalidated")
	})
	m.drain()
	if err != nil {
		return fmt.Errorf("%w: invalidate: %w", ErrSessionPersist, err)
	}
	return nil
}

func (m *Manager) clearLocked(ctx context.Context, tx *txn, reason string) error {
	err := m.store.Clear(ctx)
	if err != nil {
		m.logger.Error("goAset: session clear failed", "reason", reason, "err", err)
	}
	tx.setState(StateUnauthenticated)
	m.metrics.Inc(MetricSessionCleared)
	m.emit(ctx, EventSessionCleared, err == nil, reason, nil)
	return err
}

/*
====================================
ROLE
====================================
*/

// ResolveRole fetches the role for the stored credential and persists it.
// Resolution failures degrade to the cached role or permission.DefaultRole
// and are not reported; the only error is ErrNotAuthenticated.
func (m *Manager) ResolveRole(ctx context.Context) (permission.Role, error) {
	if !m.ready() {
		return "", ErrManagerNotReady
	}
	ctx = ensureRequestID(ctx)

	var (
		role permission.Role
		err  error
	)
	m.locked(ctx, func(tx *txn) {
		credential, cerr := m.storedCredential(ctx)
		if cerr != nil {
			err = cerr
			return
		}
		rr := m.flows.ResolveRole(ctx, credential, jwt.SubjectOf(credential))
		m.recordRole(ctx, rr)
		role = rr.Role
	})
	m.drain()
	return role, err
}

func (m *Manager) recordRole(ctx context.Context, rr flows.RoleResult) {
	if rr.Degraded() {
		m.metrics.Inc(MetricRoleDefaulted)
	} else {
		m.metrics.Inc(MetricRoleResolved)
	}
	if rr.StoreErr != nil {
		m.logger.Warn("goAset: role not persisted", "op", "resolve_role", "err", rr.StoreErr)
	}
	m.emit(ctx, EventRoleResolved, rr.StoreErr == nil, "", func(e *SessionEvent) {
		e.Role = rr.Role.String()
		e.Metadata = map[string]string{"source": rr.Source.String()}
	})
}

func roleSource(s flows.RoleSource) RoleSource {
	switch s {
	case flows.RoleFromBackend:
		return RoleSourceBackend
	case flows.RoleFromCache:
		return RoleSourceCache
	default:
		return RoleSourceDefault
	}
}

/*
====================================
ACCESSORS
====================================
*/

// State returns the current authentication state.
func (m *Manager) State() State {
	if m == nil {
		return StateUnknown
	}
	return State(m.state.Load())
}

// Role returns the persisted role, or "" unless the session is authenticated.
func (m *Manager) Role(ctx context.Context) permission.Role {
	if !m.ready() || m.State() != StateAuthenticated {
		return ""
	}
	v, ok, err := m.store.Get(ctx, session.FieldRole)
	if err != nil || !ok {
		return ""
	}
	return permission.ParseRole(v)
}

// FullyAuthenticated reports whether the session is authenticated and has a
// resolved role. Role-gated views should render nothing privileged until it
// is true.
func (m *Manager) FullyAuthenticated(ctx context.Context) bool {
	if m.Role(ctx) == "" {
		return false
	}
	_, err := m.Credential(ctx)
	return err == nil
}

// Credential returns the decoded credential of an authenticated session.
func (m *Manager) Credential(ctx context.Context) (string, error) {
	if !m.ready() {
		return "", ErrManagerNotReady
	}
	if m.State() != StateAuthenticated {
		return "", ErrNotAuthenticated
	}
	return m.storedCredential(ctx)
}

func (m *Manager) storedCredential(ctx context.Context) (string, error) {
	encoded, ok, err := m.store.Get(ctx, session.FieldToken)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
	}
	if !ok || encoded == "" {
		return "", ErrNotAuthenticated
	}
	credential, err := m.codec.Decode(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
	}
	return credential, nil
}

// VisibleMenu returns the menu entries the current role may see, in menu
// order. It is empty while the role is unresolved.
func (m *Manager) VisibleMenu(ctx context.Context) []permission.MenuEntry {
	if !m.ready() {
		return []permission.MenuEntry{}
	}
	return permission.VisibleEntries(m.Role(ctx), m.menu)
}

// Backend returns the client the Manager talks to, for data endpoints that
// share its base URL and request-id propagation.
func (m *Manager) Backend() *backend.Client {
	if m == nil {
		return nil
	}
	return m.client
}

// Config returns the configuration the Manager was built with.
func (m *Manager) Config() Config {
	if m == nil {
		return Config{}
	}
	return m.config
}

// MetricsSnapshot returns a copy of every counter and histogram.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	if m == nil || m.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return m.metrics.Snapshot()
}

// EventsDropped returns how many session events a full buffer discarded.
func (m *Manager) EventsDropped() uint64 {
	if m == nil {
		return 0
	}
	return m.audit.Dropped()
}

// Teardown stops every refresh loop started by StartRefreshLoop and flushes
// pending session events. The session itself is kept. Later loops start
// already stopped.
func (m *Manager) Teardown() {
	if m == nil {
		return
	}
	m.loopMu.Lock()
	m.torn = true
	loops := make([]*RefreshLoop, 0, len(m.loops))
	for l := range m.loops {
		loops = append(loops, l)
	}
	m.loopMu.Unlock()

	for _, l := range loops {
		l.Stop()
	}
	m.audit.Close()
}

func failureReason(k flows.FailureKind) string {
	if k == flows.FailureNone {
		return ""
	}
	return k.String()
}

func storeFailure(err error) flows.FailureKind {
	if err == nil {
		return flows.FailureNone
	}
	return flows.FailureStore
}
