package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/p-n-ai/pai-tutorial/internal/api"
	"github.com/p-n-ai/pai-tutorial/internal/curriculum"
	"github.com/p-n-ai/pai-tutorial/internal/platform/cache"
	"github.com/p-n-ai/pai-tutorial/internal/platform/config"
	"github.com/p-n-ai/pai-tutorial/internal/platform/database"
	"github.com/p-n-ai/pai-tutorial/internal/progress"
	"github.com/p-n-ai/pai-tutorial/internal/render"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// newLogger builds the process logger from LEARN_LOG_LEVEL and LEARN_LOG_FORMAT.
func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// app holds the wired components of the server.
type app struct {
	handler    http.Handler
	catalog    *curriculum.Catalog
	tracker    *progress.Tracker
	dispatcher *progress.Dispatcher
	sinks      int
	closers    []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newApp wires the catalog, tracker, optional event sinks, and HTTP API.
// Postgres and Redis are only connected when their URLs are configured.
func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	parser, err := curriculum.NewParser(cfg.Content.FrontMatter)
	if err != nil {
		return nil, err
	}
	catalog := curriculum.NewCatalog(curriculum.NewDirSource(cfg.Content.Path), parser, log)
	tracker := progress.NewTracker(progress.TrackerConfig{
		Chapters: catalog,
		Logger:   log,
	})

	a := &app{
		catalog:    catalog,
		tracker:    tracker,
		dispatcher: progress.NewDispatcher(log),
	}
	checks := map[string]api.HealthChecker{}
	var history api.EventHistory

	if cfg.HasDatabase() {
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connecting database: %w", err)
		}
		a.closers = append(a.closers, db.Close)

		if cfg.Database.EnsureSchema {
			if err := db.EnsureSchema(ctx); err != nil {
				a.close()
				return nil, err
			}
		}
		events := progress.NewPostgresEventLogger(db.Pool)
		a.dispatcher.Register("postgres", events)
		history = events
		a.sinks++
		checks["database"] = db
	}

	if cfg.HasCache() {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connecting cache: %w", err)
		}
		a.closers = append(a.closers, func() { _ = c.Close() })

		a.dispatcher.Register("redis", progress.NewRedisPublisher(c.Client, cfg.Cache.Channel))
		a.sinks++
		checks["cache"] = c
	}

	a.handler = api.NewServer(catalog, tracker, render.New(cfg.Render.Style), log, api.Options{
		AdminKeyHash: cfg.Auth.AdminKeyHash,
		EventsBuffer: cfg.Events.Buffer,
		Checks:       checks,
		History:      history,
	})

	if cfg.Auth.AdminKeyHash == "" {
		log.Warn("LEARN_AUTH_ADMIN_KEY_HASH is empty, admin routes are open")
	}
	return a, nil
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	log.Info("chapter catalog ready",
		"path", cfg.Content.Path,
		"chapters", len(a.catalog.GetAllChapters()),
		"skipped", len(a.catalog.Skipped()),
	)

	if a.sinks > 0 {
		go a.dispatcher.Run(ctx, a.tracker.Subscribe(cfg.Events.Buffer))
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      a.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
