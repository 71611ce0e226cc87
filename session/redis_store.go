package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultTabTTL = 12 * time.Hour

// RedisStore keeps one tab's session under "<prefix>:<tabID>:<field>".
// Every write refreshes the TTL of all three keys so they expire together.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
	tabID  string
	ttl    time.Duration
}

// NewTabID returns a fresh random tab identifier.
func NewTabID() string {
	return uuid.NewString()
}

// NewRedisStore binds a store to tabID. An empty tabID gets a fresh one and
// a non-positive ttl falls back to 12h.
func NewRedisStore(client redis.UniversalClient, prefix, tabID string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "goaset"
	}
	if tabID == "" {
		tabID = NewTabID()
	}
	if ttl <= 0 {
		ttl = defaultTabTTL
	}
	return &RedisStore{
		redis:  client,
		prefix: prefix,
		tabID:  tabID,
		ttl:    ttl,
	}
}

// TabID returns the tab this store is bound to.
func (s *RedisStore) TabID() string {
	return s.tabID
}

func (s *RedisStore) key(field Field) string {
	return s.prefix + ":" + s.tabID + ":" + string(field)
}

func (s *RedisStore) Get(ctx context.Context, field Field) (string, bool, error) {
	v, err := s.redis.Get(ctx, s.key(field)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return v, true, nil
}

// Set writes field and slides the TTL of its siblings.
//
//	Performance: 1 round trip (SET + EXPIRE of siblings, pipelined).
func (s *RedisStore) Set(ctx context.Context, field Field, value string) error {
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(field), value, s.ttl)
		for _, f := range Fields {
			if f != field {
				pipe.Expire(ctx, s.key(f), s.ttl)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, field Field) error {
	if err := s.redis.Del(ctx, s.key(field)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	keys := make([]string, 0, len(Fields))
	for _, f := range Fields {
		keys = append(keys, s.key(f))
	}
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
