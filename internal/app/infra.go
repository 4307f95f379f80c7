package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"

	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/config"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/logging"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/store"
)

// Infra bundles the shared infrastructure handles, created once at
// startup and injected into the services.
type Infra struct {
	DB    *sql.DB
	Redis *goredis.Client
}

func setupInfra(ctx context.Context, cfg config.Config, log logging.Logger) (*Infra, error) {
	db, err := sql.Open("postgres", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := store.RunMigration(ctx, db); err != nil {
		return nil, fmt.Errorf("run migration: %w", err)
	}
	log.Info(ctx, "database ready")

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	log.Info(ctx, "redis ready")

	return &Infra{DB: db, Redis: redisClient}, nil
}

func (i *Infra) Close() error {
	redisErr := i.Redis.Close()
	if err := i.DB.Close(); err != nil {
		return err
	}
	return redisErr
}
