package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/app"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/config"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/logging"
)

func main() {
	log := logging.NewJSON(slog.LevelInfo)

	cfg, err := config.Load()
	if err != nil {
		log.Error(context.Background(), "invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to initialize app", "error", err)
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- application.Run()
	}()

	log.Info(ctx, "server started", "port", cfg.AppPort)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error(ctx, "http server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	log.Info(ctx, "shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info(context.Background(), "server stopped cleanly")
}
