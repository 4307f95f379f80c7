package app

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/auth"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/cache"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/config"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/connection"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/httpapi"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/logging"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/password"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/post"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/rate"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/session"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/store"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/token"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/user"
)

func setupHTTP(ctx context.Context, cfg config.Config, log logging.Logger) (*gin.Engine, func() error, error) {
	infra, err := setupInfra(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	issuer, err := token.NewIssuer(token.Config{
		Secret: []byte(cfg.TokenSecret),
		TTL:    cfg.TokenTTL,
		Issuer: "linkedin-clone-mini",
	})
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	hasher, err := password.NewHasher(password.DefaultConfig())
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	sessions := session.NewAuthority(infra.Redis, "session")
	profileCache := cache.New(infra.Redis, "cache:user")
	postsCache := cache.New(infra.Redis, "cache:userposts")
	limiter := rate.New(infra.Redis, rate.Config{
		EnableIPThrottle: true,
		MaxAttempts:      cfg.AuthMaxAttempts,
		Window:           cfg.AuthRateWindow,
	})

	usersRepo := store.NewUsers(infra.DB)
	connectionsRepo := store.NewConnections(infra.DB)
	postsRepo := store.NewPosts(infra.DB)

	userSvc := user.NewService(usersRepo, profileCache,
		user.Config{ProfileTTL: cfg.ProfileCacheTTL}, log)
	authSvc := auth.NewService(usersRepo, hasher, issuer, sessions, limiter, log)
	connectionSvc := connection.NewService(connectionsRepo, usersRepo, log)
	postSvc := post.NewService(postsRepo, postsCache,
		post.Config{FeedTTL: cfg.PostsCacheTTL}, log)

	gate := httpapi.NewGate(issuer, sessions, userSvc, log)
	handler := httpapi.NewHandler(authSvc, userSvc, connectionSvc, postSvc, gate, sessions, log)

	router := gin.New()
	router.Use(gin.Recovery(), httpapi.RequestTimeout(cfg.RequestTimeout))
	handler.RegisterRoutes(router)

	return router, infra.Close, nil
}
