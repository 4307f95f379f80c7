// Package user serves profile reads through the cache and keeps the
// cache coherent with authoritative profile writes.
package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/cache"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/logging"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/store"
)

// ErrUserNotFound is returned when the underlying user row does not
// exist.
var ErrUserNotFound = errors.New("user not found")

// Source tags where a profile read was served from.
type Source string

const (
	SourceCache    Source = "cache"
	SourceDatabase Source = "database"
)

// Profile is the public projection of a user. It never carries the
// secret hash.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	Location  string    `json:"location,omitempty"`
	Website   string    `json:"website,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileFromUser builds the public projection of a user row.
func ProfileFromUser(u *store.User) *Profile {
	return &Profile{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Avatar:    u.Avatar,
		Location:  u.Location,
		Website:   u.Website,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Store is the slice of the user repository this service needs.
type Store interface {
	GetByID(ctx context.Context, id string) (*store.User, error)
	UpdateProfile(ctx context.Context, id string, u store.ProfileUpdate) (*store.User, error)
}

// Cache is the profile cache contract: read-through on miss,
// unconditional invalidate on write.
type Cache interface {
	Read(ctx context.Context, key string, dest any) error
	Write(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Config holds service tuning parameters.
type Config struct {
	ProfileTTL time.Duration
}

// Service coordinates the authoritative user store and the profile
// cache.
type Service struct {
	users  Store
	cache  Cache
	config Config
	log    logging.Logger
}

// NewService creates a profile [Service].
func NewService(users Store, cacheStore Cache, cfg Config, log logging.Logger) *Service {
	if cfg.ProfileTTL <= 0 {
		cfg.ProfileTTL = time.Hour
	}
	return &Service{users: users, cache: cacheStore, config: cfg, log: log}
}

// GetProfile returns the profile for userID and the source it was
// served from. Cache errors of any kind degrade to a database read;
// they never fail the request.
func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, Source, error) {
	var cached Profile
	err := s.cache.Read(ctx, userID, &cached)
	if err == nil {
		return &cached, SourceCache, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn(ctx, "profile cache read failed, falling back to database",
			"user_id", userID, "error", err)
	}

	profile, err := s.fetchAndCache(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	return profile, SourceDatabase, nil
}

// UpdateProfile applies the update to the authoritative store, then
// invalidates the cache entry before repopulating it. Invalidation
// comes first so a failed repopulate leaves a miss, never a stale hit.
func (s *Service) UpdateProfile(ctx context.Context, userID string, update store.ProfileUpdate) (*Profile, error) {
	updated, err := s.users.UpdateProfile(ctx, userID, update)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	profile := ProfileFromUser(updated)

	if err := s.cache.Invalidate(ctx, userID); err != nil {
		// Retry once; transient failures are the common case.
		if err := s.cache.Invalidate(ctx, userID); err != nil {
			// Stale value must not stay reachable. With invalidation
			// failed, do not repopulate either; entry expires via TTL at
			// worst.
			s.log.Warn(ctx, "profile cache invalidate failed", "user_id", userID, "error", err)
			return profile, nil
		}
	}

	if err := s.cache.Write(ctx, userID, profile, s.config.ProfileTTL); err != nil {
		s.log.Warn(ctx, "profile cache repopulate failed", "user_id", userID, "error", err)
	}

	return profile, nil
}

// InvalidateProfile drops the cache entry for userID. Exposed for
// writers outside this service that touch profile-adjacent state.
func (s *Service) InvalidateProfile(ctx context.Context, userID string) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.log.Warn(ctx, "profile cache invalidate failed", "user_id", userID, "error", err)
	}
}

func (s *Service) fetchAndCache(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	profile := ProfileFromUser(u)
	if err := s.cache.Write(ctx, userID, profile, s.config.ProfileTTL); err != nil {
		s.log.Warn(ctx, "profile cache write failed", "user_id", userID, "error", err)
	}

	return profile, nil
}
