package goAset

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/mansetdig/goAset/session"
)

func newRedisClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

func TestRedisSessionSurvivesManagerRestart(t *testing.T) {
	api := newFakeAPI(t)
	rdb, _ := newRedisClient(t)
	ctx := context.Background()

	first := newTestManager(t, api, session.NewRedisStore(rdb, "as", "tab-1", time.Hour))
	if _, err := first.Login(ctx, "alice", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	first.Teardown()

	second := newTestManager(t, api, session.NewRedisStore(rdb, "as", "tab-1", time.Hour))
	if got := second.Bootstrap(ctx); got != StateAuthenticated {
		t.Fatalf("expected authenticated after restart, got %s", got)
	}
	if role := second.Role(ctx); role != "admin" {
		t.Fatalf("expected admin role, got %q", role)
	}
}

func TestRedisSessionIsTabScoped(t *testing.T) {
	api := newFakeAPI(t)
	rdb, _ := newRedisClient(t)
	ctx := context.Background()

	m := newTestManager(t, api, session.NewRedisStore(rdb, "as", "tab-1", time.Hour))
	if _, err := m.Login(ctx, "alice", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}

	other := newTestManager(t, api, session.NewRedisStore(rdb, "as", "tab-2", time.Hour))
	before := api.total()
	if got := other.Bootstrap(ctx); got != StateUnauthenticated {
		t.Fatalf("another tab must not see the session, got %s", got)
	}
	if api.total() != before {
		t.Fatal("bootstrap without a stored credential must not reach the backend")
	}
}

func TestRedisSessionExpiresWithTab(t *testing.T) {
	api := newFakeAPI(t)
	rdb, mr := newRedisClient(t)
	ctx := context.Background()

	m := newTestManager(t, api, session.NewRedisStore(rdb, "as", "tab-1", time.Minute))
	if _, err := m.Login(ctx, "alice", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	restarted := newTestManager(t, api, session.NewRedisStore(rdb, "as", "tab-1", time.Minute))
	if got := restarted.Bootstrap(ctx); got != StateUnauthenticated {
		t.Fatalf("expired tab should bootstrap unauthenticated, got %s", got)
	}
}

func TestRedisLogoutRemovesKeys(t *testing.T) {
	api := newFakeAPI(t)
	rdb, mr := newRedisClient(t)
	ctx := context.Background()

	m := newTestManager(t, api, session.NewRedisStore(rdb, "as", "tab-1", time.Hour))
	if _, err := m.Login(ctx, "alice", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !mr.Exists("as:tab-1:token") {
		t.Fatal("credential key missing after login")
	}
	if err := m.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	for _, key := range []string{"as:tab-1:token", "as:tab-1:refresh_token", "as:tab-1:userRole"} {
		if mr.Exists(key) {
			t.Fatalf("%s survived logout", key)
		}
	}
}
