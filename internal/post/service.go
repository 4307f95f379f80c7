// Package post is plain CRUD over the posts table, with a short-TTL
// cache on the per-author listing. Ownership is the only rule: authors
// mutate their own posts, nobody else's.
package post

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/cache"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/logging"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/store"
)

var (
	// ErrPostNotFound is returned when no post exists for the id.
	ErrPostNotFound = errors.New("post not found")
	// ErrNotPostOwner is returned when someone other than the author
	// mutates a post.
	ErrNotPostOwner = errors.New("not the post owner")
)

const defaultFeedLimit = 20

// Store is the slice of the post repository this service needs.
type Store interface {
	Create(ctx context.Context, p *store.Post) error
	GetByID(ctx context.Context, id string) (*store.Post, error)
	ListByAuthor(ctx context.Context, authorID string, limit int) ([]store.Post, error)
	UpdateContent(ctx context.Context, id, content string) (*store.Post, error)
	Delete(ctx context.Context, id string) error
}

// Cache caches the per-author listing. Same contract as the profile
// cache: errors degrade to a database read, writes invalidate first.
type Cache interface {
	Read(ctx context.Context, key string, dest any) error
	Write(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Config holds service tuning parameters.
type Config struct {
	FeedTTL time.Duration
}

type Service struct {
	posts  Store
	cache  Cache
	config Config
	log    logging.Logger
}

func NewService(posts Store, cacheStore Cache, cfg Config, log logging.Logger) *Service {
	if cfg.FeedTTL <= 0 {
		cfg.FeedTTL = 30 * time.Minute
	}
	return &Service{posts: posts, cache: cacheStore, config: cfg, log: log}
}

func (s *Service) Create(ctx context.Context, authorID, content string) (*store.Post, error) {
	p := &store.Post{ID: uuid.NewString(), AuthorID: authorID, Content: content}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	s.invalidateFeed(ctx, authorID)
	return p, nil
}

// ListByAuthor serves the author's feed through the cache.
func (s *Service) ListByAuthor(ctx context.Context, authorID string) ([]store.Post, error) {
	var cached []store.Post
	err := s.cache.Read(ctx, authorID, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn(ctx, "posts cache read failed, falling back to database",
			"author_id", authorID, "error", err)
	}

	posts, err := s.posts.ListByAuthor(ctx, authorID, defaultFeedLimit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	if err := s.cache.Write(ctx, authorID, posts, s.config.FeedTTL); err != nil {
		s.log.Warn(ctx, "posts cache write failed", "author_id", authorID, "error", err)
	}
	return posts, nil
}

func (s *Service) Update(ctx context.Context, postID, actorID, content string) (*store.Post, error) {
	existing, err := s.getOwned(ctx, postID, actorID)
	if err != nil {
		return nil, err
	}

	updated, err := s.posts.UpdateContent(ctx, existing.ID, content)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	s.invalidateFeed(ctx, actorID)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, postID, actorID string) error {
	existing, err := s.getOwned(ctx, postID, actorID)
	if err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, existing.ID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	s.invalidateFeed(ctx, actorID)
	return nil
}

func (s *Service) getOwned(ctx context.Context, postID, actorID string) (*store.Post, error) {
	p, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("load post: %w", err)
	}
	if p.AuthorID != actorID {
		return nil, ErrNotPostOwner
	}
	return p, nil
}

func (s *Service) invalidateFeed(ctx context.Context, authorID string) {
	if err := s.cache.Invalidate(ctx, authorID); err != nil {
		s.log.Warn(ctx, "posts cache invalidate failed", "author_id", authorID, "error", err)
	}
}
