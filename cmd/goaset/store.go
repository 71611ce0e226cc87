package main

import (
	"context"
	"fmt"
	"time"

	goAset "github.com/mansetdig/goAset"
	"github.com/mansetdig/goAset/session"
	"github.com/redis/go-redis/v9"
)

// openStore returns the session store for this invocation and a function
// releasing it. An empty addr selects a process-local memory store.
func openStore(ctx context.Context, addr, tabID string, cfg goAset.SessionConfig) (session.Store, string, func(), error) {
	if addr == "" {
		return session.NewMemoryStore(), "", func() {}, nil
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{addr},
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, "", nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}

	store := session.NewRedisStore(client, cfg.RedisPrefix, tabID, cfg.TabTTL)
	return store, store.TabID(), func() { _ = client.Close() }, nil
}
