// Package session holds, per user, the single credential currently
// considered valid. Cryptographic validity alone never authorizes a
// request; the presented credential must also equal the recorded one.
// That is what makes logout and "latest login wins" enforceable
// server-side.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrSessionNotFound is returned when no session record exists for a user.
	ErrSessionNotFound = errors.New("session not found")
	// ErrRedisUnavailable wraps infrastructure failures. Callers on the
	// authorization path must fail closed when they see it.
	ErrRedisUnavailable = errors.New("redis unavailable")
)

// Session is the server-held record of the one credential currently
// valid for a user.
type Session struct {
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Authority is a Redis-backed single-session-per-user store. One record
// per user; establishing a new one unconditionally supersedes the old.
type Authority struct {
	redis  redis.UniversalClient
	prefix string
}

// NewAuthority creates an [Authority] backed by the given Redis client.
// prefix sets the Redis key namespace.
func NewAuthority(client redis.UniversalClient, prefix string) *Authority {
	if prefix == "" {
		prefix = "session"
	}
	return &Authority{redis: client, prefix: prefix}
}

func (a *Authority) key(userID string) string {
	return a.prefix + ":" + userID
}

// Establish records sess as the sole valid session for its user,
// overwriting any prior record. A plain SET with TTL: Redis applies it
// atomically per key, so concurrent logins cannot interleave into a
// half-written record — the last writer wins outright.
func (a *Authority) Establish(ctx context.Context, sess Session, ttl time.Duration) error {
	if sess.UserID == "" || sess.Token == "" {
		return errors.New("session missing user id or token")
	}
	if ttl <= 0 {
		return errors.New("session TTL must be positive")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := a.redis.Set(ctx, a.key(sess.UserID), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Lookup returns the recorded session for userID, or
// [ErrSessionNotFound] when none exists (expired records disappear via
// Redis TTL and read the same way).
func (a *Authority) Lookup(ctx context.Context, userID string) (*Session, error) {
	data, err := a.redis.Get(ctx, a.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	return &sess, nil
}

// Revoke removes the session record for userID. Idempotent: revoking a
// non-existent session is not an error.
func (a *Authority) Revoke(ctx context.Context, userID string) error {
	if err := a.redis.Del(ctx, a.key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Ping reports point-in-time Redis availability.
func (a *Authority) Ping(ctx context.Context) error {
	if err := a.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
