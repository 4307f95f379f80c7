// Package app wires infrastructure, services, and the HTTP router into
// a runnable application.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/config"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/logging"
)

// App owns the HTTP server and the infrastructure cleanup.
type App struct {
	httpServer *http.Server
	cleanup    func() error
}

// New builds the application from configuration.
func New(ctx context.Context, cfg config.Config, log logging.Logger) (*App, error) {
	router, cleanup, err := setupHTTP(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	server := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{httpServer: server, cleanup: cleanup}, nil
}

// Run serves until the listener fails or Shutdown is called.
func (a *App) Run() error {
	err := a.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and releases infrastructure.
func (a *App) Shutdown(ctx context.Context) error {
	if err := a.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	if a.cleanup != nil {
		return a.cleanup()
	}
	return nil
}
