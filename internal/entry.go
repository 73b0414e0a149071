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
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/raido/internal/api"
	"github.com/starford/raido/internal/build"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/metrics"
	"github.com/starford/raido/internal/render"
	"github.com/starford/raido/internal/sse"
	"github.com/starford/raido/internal/storage"
	"github.com/starford/raido/internal/watch"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{
		logOut:  os.Stdout,
		out:     os.Stdout,
		version: "dev",
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}

	// Initialize structured JSON logger.
	app.logger = slog.New(slog.NewJSONHandler(app.logOut, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
	slog.SetDefault(app.logger)
	return app, nil
}

// openIndex opens the graph index, or returns nil when it is disabled.
func (a *application) openIndex() (*index.DB, error) {
	if !a.config.Index.Enabled() {
		return nil, nil
	}
	db, err := index.Open(a.config.Index.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}
	return db, nil
}

// newStore opens the source tree, skipping the output tree when it is nested
// inside it.
func (a *application) newStore() (storage.Provider, error) {
	store, err := storage.NewFS(a.config.Build.Input, a.config.Build.Output)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return store, nil
}

func (a *application) newBuilder(store storage.Provider, db *index.DB) (*build.Builder, error) {
	cfg := a.config
	site := cfg.RenderSite()

	renderer, err := render.New(render.Options{
		ViewsDir:     cfg.Build.Views,
		FeedTemplate: cfg.Build.FeedTemplate,
	}, site)
	if err != nil {
		return nil, fmt.Errorf("init renderer: %w", err)
	}

	out, err := filepath.Abs(cfg.Build.Output)
	if err != nil {
		return nil, fmt.Errorf("resolve output: %w", err)
	}

	var recorder build.GraphRecorder
	if db != nil {
		recorder = db
	}
	writer := storage.NewWriter(a.logger, cfg.Build.Quiet, cfg.Build.Concurrency)
	return build.NewBuilder(store, renderer, writer, recorder, build.Options{
		OutputRoot:  out,
		Head:        cfg.Site.Head,
		Dev:         cfg.Build.Dev,
		Site:        site,
		FeedPath:    cfg.Build.FeedPath,
		Concurrency: cfg.Build.Concurrency,
		Logger:      a.logger,
	}), nil
}

// Build runs one full build pass.
func Build(ctx context.Context, opts ...Option) (*build.Report, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	cfg := app.config

	app.logger.Info("Configuration loaded",
		slog.String("input", cfg.Build.Input),
		slog.String("output", cfg.Build.Output),
		slog.String("index_path", cfg.Index.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := app.newStore()
	if err != nil {
		return nil, err
	}
	db, err := app.openIndex()
	if err != nil {
		return nil, err
	}
	if db != nil {
		defer db.Close()
	}

	builder, err := app.newBuilder(store, db)
	if err != nil {
		return nil, err
	}
	return builder.Run(ctx)
}

// Serve builds the site in development mode, serves the output tree and
// rebuilds on every source change until ctx is cancelled or a shutdown
// signal arrives.
func Serve(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	cfg.Build.Dev = true
	logger := app.logger

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("input", cfg.Build.Input),
		slog.String("output", cfg.Build.Output),
		slog.String("index_path", cfg.Index.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Build.Output, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	store, err := app.newStore()
	if err != nil {
		return err
	}
	db, err := app.openIndex()
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}
	builder, err := app.newBuilder(store, db)
	if err != nil {
		return err
	}

	// SSE broker.
	broker := sse.NewBroker(500 * time.Millisecond)
	defer broker.Close()

	recorder := metrics.NewRecorder(nil)

	rebuild := func(ctx context.Context) {
		start := time.Now()
		report, err := builder.Run(ctx)
		if err != nil {
			logger.Error("build failed", slog.String("error", err.Error()))
			recorder.ObserveFailure(time.Since(start))
			broker.PublishBuild(sse.BuildInfo{Error: err.Error()})
			return
		}
		recorder.ObserveBuild(metrics.BuildStats{
			Pages:    report.Pages,
			Written:  report.Written,
			Copied:   report.Copied,
			Omitted:  len(report.Omitted),
			Duration: report.Duration,
		})
		broker.PublishBuild(sse.BuildInfo{
			Pages:    report.Pages,
			Written:  report.Written,
			Duration: report.Duration.String(),
		})
	}

	// Initial build. A broken source tree still gets served so it can be fixed.
	rebuild(ctx)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/_raido/events", broker.ServeHTTP)
	r.Handle("/_raido/metrics", recorder.Handler())
	if db != nil {
		r.Mount("/_raido/api", api.NewRouter(db, cfg.Auth.AuthEnabled(), cfg.Auth.Token))
	}
	r.Handle("/*", http.FileServer(http.Dir(cfg.Build.Output)))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Rebuild on source changes.
	g.Go(func() error {
		w := watch.New(cfg.Build.Input, []string{cfg.Build.Output}, watch.DefaultDebounce, logger)
		return w.Run(gCtx, func(ctx context.Context, paths []string) {
			logger.Info("source changed, rebuilding", slog.Int("paths", len(paths)))
			rebuild(ctx)
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
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Close SSE streams first; Shutdown waits for open connections.
		broker.Close()

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

// errShutdown cancels the group's context so the watcher stops along with
// the HTTP server.
var errShutdown = errors.New("shutdown")
