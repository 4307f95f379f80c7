// Package cache is a read-through, write-invalidate cache over Redis.
// Entries are derived and disposable: absence is always a valid state
// and triggers a re-fetch from the authoritative store, never an error
// surfaced to the caller's caller.
//
// Coherency contract: any write-path mutation of the cached entity MUST
// call Invalidate before (or instead of) repopulating. Reads tolerate a
// stale hit within TTL; writes must never leave a stale value reachable
// after they complete.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss is returned when no entry exists for a key.
	ErrCacheMiss = errors.New("cache miss")
	// ErrCacheUnavailable wraps infrastructure failures. The cache sits on
	// the performance path, so callers treat it exactly like a miss and
	// fall back to the authoritative store (fail open).
	ErrCacheUnavailable = errors.New("cache unavailable")
)

// Store is a Redis-backed JSON cache under a single key prefix.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// New creates a [Store] namespaced under prefix.
func New(client redis.UniversalClient, prefix string) *Store {
	return &Store{redis: client, prefix: prefix}
}

func (s *Store) cacheKey(key string) string {
	return s.prefix + ":" + key
}

// Read unmarshals the cached entry for key into dest. Returns
// [ErrCacheMiss] when absent, [ErrCacheUnavailable] on infra failure.
// A corrupt entry reads as a miss after being dropped.
func (s *Store) Read(ctx context.Context, key string, dest any) error {
	data, err := s.redis.Get(ctx, s.cacheKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		_ = s.redis.Del(ctx, s.cacheKey(key))
		return ErrCacheMiss
	}

	return nil
}

// Write stores value under key with the given TTL.
func (s *Store) Write(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("cache TTL must be positive")
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	if err := s.redis.Set(ctx, s.cacheKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	return nil
}

// Invalidate removes the entry for key unconditionally, independent of
// TTL. Idempotent.
func (s *Store) Invalidate(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, s.cacheKey(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}
