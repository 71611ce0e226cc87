package goAset

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mansetdig/goAset/codec"
	"github.com/mansetdig/goAset/session"
)

// fakeAPI is an in-process asset-lending backend. Each handler field may be
// replaced before the first request; counts are keyed by route name.
type fakeAPI struct {
	srv *httptest.Server

	mu     sync.Mutex
	counts map[string]int

	login   func(w http.ResponseWriter, r *http.Request)
	check   func(w http.ResponseWriter, token string)
	refresh func(w http.ResponseWriter, token string)
	account func(w http.ResponseWriter, r *http.Request)
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{counts: map[string]int{}}
	f.login = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"access_token":  makeToken("alice"),
			"refresh_token": "refresh-1",
		})
	}
	f.check = func(w http.ResponseWriter, _ string) { w.WriteHeader(http.StatusOK) }
	f.refresh = func(w http.ResponseWriter, _ string) {
		writeJSON(w, http.StatusOK, map[string]string{"access_token": makeToken("alice") + "r"})
	}
	f.account = func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"username": "alice", "role": "admin"})
	}

	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/auth/login":
			f.hit("login")
			f.login(w, r)
		case strings.HasPrefix(r.URL.Path, "/auth/token/"):
			f.hit("check")
			f.check(w, strings.TrimPrefix(r.URL.Path, "/auth/token/"))
		case strings.HasPrefix(r.URL.Path, "/auth/refresh/"):
			f.hit("refresh")
			f.refresh(w, strings.TrimPrefix(r.URL.Path, "/auth/refresh/"))
		case strings.HasPrefix(r.URL.Path, "/user/"):
			f.hit("role")
			f.account(w, r)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) hit(route string) {
	f.mu.Lock()
	f.counts[route]++
	f.mu.Unlock()
}

func (f *fakeAPI) count(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[route]
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.counts {
		n += c
	}
	return n
}

func (f *fakeAPI) config() Config {
	cfg := DefaultConfig()
	cfg.Backend.BaseURL = f.srv.URL
	cfg.Backend.Timeout = 2 * time.Second
	return cfg
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// makeToken builds an unsigned three-segment credential naming username.
func makeToken(username string) string {
	enc := base64.RawURLEncoding
	header := enc.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	payload := enc.EncodeToString([]byte(`{"username":"` + username + `"}`))
	return header + "." + payload + ".sig"
}

func newTestManager(t *testing.T, api *fakeAPI, store session.Store, opts ...func(*Builder)) *Manager {
	t.Helper()
	b := New().WithConfig(api.config()).WithStore(store)
	for _, opt := range opts {
		opt(b)
	}
	m, err := b.Build()
	if err != nil {
		t.Fatalf("build manager: %v", err)
	}
	t.Cleanup(m.Teardown)
	return m
}

func seedSession(t *testing.T, store session.Store, token, refresh string) {
	t.Helper()
	ctx := context.Background()
	enc, err := codec.Encode(token, DefaultCodecKey)
	if err != nil {
		t.Fatalf("encode token: %v", err)
	}
	encRefresh, err := codec.Encode(refresh, DefaultCodecKey)
	if err != nil {
		t.Fatalf("encode refresh: %v", err)
	}
	if err := store.Set(ctx, session.FieldToken, enc); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, session.FieldRefreshToken, encRefresh); err != nil {
		t.Fatal(err)
	}
}

func storedToken(t *testing.T, store session.Store) string {
	t.Helper()
	v, ok, err := store.Get(context.Background(), session.FieldToken)
	if err != nil || !ok {
		t.Fatalf("token not stored: ok=%v err=%v", ok, err)
	}
	plain, err := codec.Decode(v, DefaultCodecKey)
	if err != nil {
		t.Fatalf("decode stored token: %v", err)
	}
	return plain
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(2 * time.Millisecond)
	}
}
