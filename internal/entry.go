// Package internal provides the main application initialization and runtime logic.
package internal

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/ontrack/internal/api"
	"github.com/starford/ontrack/internal/index"
	"github.com/starford/ontrack/internal/mcpserver"
	"github.com/starford/ontrack/internal/roster"
	"github.com/starford/ontrack/internal/sse"
	"github.com/starford/ontrack/internal/storage"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", out: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// components is the storage, index, and service stack shared by every command.
type components struct {
	store storage.Provider
	db    *index.DB
	svc   *roster.Service
}

// open prepares the data directory, opens the index, and brings it in line
// with the dataset files.
func (a *application) open(logger *slog.Logger) (*components, error) {
	cfg := a.config

	logger.Info("Configuration loaded",
		slog.String("data_path", cfg.Data.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Int("min_codewars_score", cfg.Track.MinCodewarsScore),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Data.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Data.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	svc := roster.NewService(store, db, cfg.Track.Classifier())
	return &components{store: store, db: db, svc: svc}, nil
}

func (c *components) Close() error {
	return c.db.Close()
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(os.Stdout, cfg.App.LogLevel)

	c, err := app.open(logger)
	if err != nil {
		return err
	}
	defer c.Close()

	broker := sse.NewBroker(cfg.Events.TrendThrottle)
	defer broker.Close()

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
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := c.db.Ping(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", api.NewRouter(c.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Dataset watcher feeding the event stream.
	g.Go(func() error {
		return index.Watch(gCtx, c.db, c.store, cfg.Data.Path, logger, broker.PublishDatasetEvent)
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

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

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group once the server has been asked to stop.
var errShutdown = errors.New("shutdown")

// RunMCP serves the roster tools over stdio. Logs go to stderr because stdout
// carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(os.Stderr, cfg.App.LogLevel)

	c, err := app.open(logger)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return index.Watch(gCtx, c.db, c.store, cfg.Data.Path, logger, nil)
	})
	g.Go(func() error {
		defer cancel()
		logger.Info("Starting MCP server", slog.String("version", app.version))
		return mcpserver.New(c.svc, app.version).Serve(gCtx, os.Stdin, os.Stdout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
