// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/ansuz/internal/api"
	"github.com/starford/ansuz/internal/blog"
	"github.com/starford/ansuz/internal/remote"
	"github.com/starford/ansuz/internal/sse"
	"github.com/starford/ansuz/internal/staging"
	"github.com/starford/ansuz/internal/storage"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := app.logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
	}
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("site_path", cfg.Site.Path),
		slog.String("staging_path", cfg.Staging.Path),
		slog.Bool("remote_enabled", cfg.Remote.Enabled()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure site directory exists.
	if err := os.MkdirAll(cfg.Site.Path, 0o755); err != nil {
		return fmt.Errorf("create site dir: %w", err)
	}

	// Initialize storage.
	store, err := storage.NewFS(cfg.Site.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	// Initialize the staging database.
	staged, err := staging.Open(cfg.Staging.Path)
	if err != nil {
		return fmt.Errorf("init staging: %w", err)
	}
	defer staged.Close()

	// Optional GitHub remote.
	var rem remote.Store
	if cfg.Remote.Enabled() {
		gh, err := remote.NewGitHub(ctx, remote.Config{
			Token:   cfg.Remote.Token,
			Repo:    cfg.Remote.Repo,
			Branch:  cfg.Remote.Branch,
			BaseURL: cfg.Remote.BaseURL,
		})
		if err != nil {
			return fmt.Errorf("init remote: %w", err)
		}
		rem = gh
	}

	// Build the blog service and load the site tree.
	svc := blog.NewService(store, staged, rem, blog.DefaultLayout(), logger)
	if err := svc.Load(ctx); err != nil {
		return fmt.Errorf("load site: %w", err)
	}

	// SSE broker; the service publishes change events through it.
	broker := sse.NewBroker(2 * time.Second)
	svc.SetNotify(broker.PublishChange)

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the site tree for external edits (git pulls, manual changes).
	g.Go(func() error {
		if err := blog.Watch(gCtx, svc, cfg.Site.Path, logger, 0); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		broker.Close()

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
