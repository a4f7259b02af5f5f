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

	"github.com/starford/ccd/internal/api"
	"github.com/starford/ccd/internal/baseline"
	"github.com/starford/ccd/internal/engine"
	"github.com/starford/ccd/internal/monitor"
	"github.com/starford/ccd/internal/sse"
)

// Serve starts the report server: an initial validation run, a file watcher
// that revalidates on change, and an HTTP API over the latest result.
func Serve(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("source_root", cfg.Source.Root),
		slog.String("docs_root", cfg.Docs.Root),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Optional content-hash baseline store.
	var store *baseline.Store
	if cfg.Baseline.Path != "" {
		var err error
		store, err = baseline.Open(cfg.Baseline.Path)
		if err != nil {
			return fmt.Errorf("init baseline: %w", err)
		}
		defer store.Close()
	}

	eng, err := engine.New(engine.Options{
		SourceRoot: cfg.Source.Root,
		DocsRoot:   cfg.Docs.Root,
		Exclude:    cfg.Source.Exclude,
		Threshold:  cfg.Health.StalenessThreshold,
		Tolerance:  cfg.Health.DriftTolerance,
		Baseline:   store,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("init engine: %w", err)
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Result holder and router.
	svc := api.NewService()
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch source and docs trees, revalidating on change.
	g.Go(func() error {
		roots := []string{cfg.Source.Root, cfg.Docs.Root}
		return monitor.Watch(gCtx, eng, roots, 500*time.Millisecond, logger,
			broker.PublishFileEvent,
			func(result *engine.Result) {
				svc.Update(result)
				if err := eng.RecordBaselines(result); err != nil {
					logger.Warn("baseline update failed", slog.String("error", err.Error()))
				}
			})
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

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
