package goAset

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mansetdig/goAset/session"
)

func waitForWaiters(t *testing.T, m *Manager, key string, n int) {
	t.Helper()
	waitFor(t, func() bool {
		m.flightMu.Lock()
		defer m.flightMu.Unlock()
		f := m.flights[key]
		return f != nil && f.waiters == n
	})
}

func TestRefreshLoopKeepsSessionWithoutRefreshCredential(t *testing.T) {
	api := newFakeAPI(t)
	api.login = func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"access_token": makeToken("alice")})
	}
	cfg := api.config()
	cfg.Refresh.Interval = 5 * time.Millisecond
	store := session.NewMemoryStore()
	m, err := New().WithConfig(cfg).WithStore(store).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer m.Teardown()

	res, err := m.Login(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.RefreshIssued {
		t.Fatal("no refresh credential was issued")
	}

	loop := m.StartRefreshLoop(context.Background())
	time.Sleep(50 * time.Millisecond)
	loop.Stop()

	if got := m.State(); got != StateAuthenticated {
		t.Fatalf("loop ended a session it could not refresh: %s", got)
	}
	if api.count("refresh") != 0 {
		t.Fatalf("expected no refresh call, got %d", api.count("refresh"))
	}
	if storedToken(t, store) != makeToken("alice") {
		t.Fatal("credential was dropped")
	}
	if got := m.MetricsSnapshot().Counters[MetricRefreshFailure]; got != 0 {
		t.Fatalf("skipped ticks must not count as failures, got %d", got)
	}
}

func TestLoginSurvivesCancelOfCoalescedCaller(t *testing.T) {
	api := newFakeAPI(t)
	gate := make(chan struct{})
	defaultLogin := api.login
	api.login = func(w http.ResponseWriter, r *http.Request) {
		<-gate
		defaultLogin(w, r)
	}
	m := newTestManager(t, api, session.NewMemoryStore())
	key := loginKey("alice", "pw")

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := m.Login(ctxA, "alice", "pw")
		errA <- err
	}()
	waitFor(t, func() bool { return api.count("login") == 1 })

	errB := make(chan error, 1)
	go func() {
		_, err := m.Login(context.Background(), "alice", "pw")
		errB <- err
	}()
	waitForWaiters(t, m, key, 2)

	cancelA()
	if err := <-errA; !errors.Is(err, context.Canceled) {
		t.Fatalf("canceled caller should see its own cancellation, got %v", err)
	}

	close(gate)
	if err := <-errB; err != nil {
		t.Fatalf("remaining caller lost its login: %v", err)
	}
	if m.State() != StateAuthenticated {
		t.Fatalf("expected authenticated, got %s", m.State())
	}
	if api.count("login") != 1 {
		t.Fatalf("expected one shared exchange, got %d", api.count("login"))
	}
}

func TestBootstrapSurvivesCancelOfCoalescedCaller(t *testing.T) {
	api := newFakeAPI(t)
	gate := make(chan struct{})
	api.check = func(w http.ResponseWriter, _ string) {
		<-gate
		w.WriteHeader(http.StatusOK)
	}
	store := session.NewMemoryStore()
	seedSession(t, store, makeToken("alice"), "refresh-1")
	m := newTestManager(t, api, store)

	ctxA, cancelA := context.WithCancel(context.Background())
	stateA := make(chan State, 1)
	go func() { stateA <- m.Bootstrap(ctxA) }()
	waitFor(t, func() bool { return api.count("check") == 1 })

	stateB := make(chan State, 1)
	go func() { stateB <- m.Bootstrap(context.Background()) }()
	waitForWaiters(t, m, "bootstrap", 2)

	cancelA()
	if got := <-stateA; got != StateUnknown {
		t.Fatalf("canceled caller should see the unsettled state, got %s", got)
	}

	close(gate)
	if got := <-stateB; got != StateAuthenticated {
		t.Fatalf("remaining caller lost a valid session: %s", got)
	}
	if storedToken(t, store) != makeToken("alice") {
		t.Fatal("valid session was cleared")
	}
}

func TestLoginAbandonedByEveryCallerIsNotPersisted(t *testing.T) {
	api := newFakeAPI(t)
	gate := make(chan struct{})
	defer close(gate)
	defaultLogin := api.login
	api.login = func(w http.ResponseWriter, r *http.Request) {
		<-gate
		defaultLogin(w, r)
	}
	store := session.NewMemoryStore()
	m := newTestManager(t, api, store)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := m.Login(ctx, "alice", "pw")
		done <- err
	}()
	waitFor(t, func() bool { return api.count("login") == 1 })
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	waitFor(t, func() bool { return m.metrics.Value(MetricLoginFailure) == 1 })
	if m.State() == StateAuthenticated || store.Len() != 0 {
		t.Fatalf("abandoned login was persisted: state=%s len=%d", m.State(), store.Len())
	}
}

func TestBootstrapCanceledLeavesSessionForNextCall(t *testing.T) {
	api := newFakeAPI(t)
	gate := make(chan struct{})
	var once sync.Once
	api.check = func(w http.ResponseWriter, _ string) {
		once.Do(func() { <-gate })
		w.WriteHeader(http.StatusOK)
	}
	store := session.NewMemoryStore()
	seedSession(t, store, makeToken("alice"), "refresh-1")
	m := newTestManager(t, api, store)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan State, 1)
	go func() { first <- m.Bootstrap(ctx) }()
	waitFor(t, func() bool { return api.count("check") == 1 })
	cancel()
	<-first
	close(gate)

	if got := m.Bootstrap(context.Background()); got != StateAuthenticated {
		t.Fatalf("canceled bootstrap destroyed the session: %s", got)
	}
}

func TestStateListenerMayLogOut(t *testing.T) {
	api := newFakeAPI(t)
	store := session.NewMemoryStore()
	var (
		m    *Manager
		mu   sync.Mutex
		seen []string
	)
	m = newTestManager(t, api, store, func(b *Builder) {
		b.WithStateListener(func(prev, next State) {
			mu.Lock()
			seen = append(seen, prev.String()+">"+next.String())
			mu.Unlock()
			if next == StateAuthenticated {
				if err := m.Logout(context.Background()); err != nil {
					t.Errorf("logout from listener: %v", err)
				}
			}
		})
	})

	done := make(chan error, 1)
	go func() {
		_, err := m.Login(context.Background(), "alice", "pw")
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("login: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("listener calling Logout deadlocked")
	}

	if m.State() != StateUnauthenticated || store.Len() != 0 {
		t.Fatalf("expected logged out session, state=%s len=%d", m.State(), store.Len())
	}
	mu.Lock()
	defer mu.Unlock()
	want := "unknown>authenticated,authenticated>unauthenticated"
	if got := strings.Join(seen, ","); got != want {
		t.Fatalf("unexpected transitions %s", got)
	}
}
