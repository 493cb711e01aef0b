// Package internal wires configuration, discovery, extraction, the index,
// and the query engine into the ansuz commands.
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
	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/discover"
	"github.com/starford/ansuz/internal/extract"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/mcpserver"
	"github.com/starford/ansuz/internal/planner"
	"github.com/starford/ansuz/internal/search"
)

// New creates the application from options. A config is required.
func New(opts ...Option) (*App, error) {
	app := &App{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logger == nil {
		// Logs go to stderr; stdout belongs to command output.
		app.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
	}
	slog.SetDefault(app.logger)
	return app, nil
}

// Build destructively rebuilds the index and indexes every discovered file.
func (a *App) Build(ctx context.Context) error {
	paths, err := a.discoverFiles()
	if err != nil {
		return err
	}
	db, err := index.Create(a.config.Index.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	return a.runUpdate(ctx, paths, db, false)
}

// Update incrementally re-indexes new and changed files against the
// existing index.
func (a *App) Update(ctx context.Context) error {
	db, err := a.openIndex()
	if err != nil {
		return err
	}
	defer db.Close()

	paths, err := a.discoverFiles()
	if err != nil {
		return err
	}
	return a.runUpdate(ctx, paths, db, a.config.Update.EarlyStop)
}

// Files regenerates the tracked-files cache and prints the discovered
// paths.
func (a *App) Files() error {
	paths, err := a.discoverFiles()
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Println(p)
	}
	return nil
}

// Search runs a weighted query (or a plain listing when the query is
// empty) and prints ranked results plus related-term suggestions.
func (a *App) Search(query string, limit int, fuzzy bool) error {
	db, err := a.openIndex()
	if err != nil {
		return err
	}
	defer db.Close()

	var expander search.TermExpander
	if fuzzy {
		expander = &search.FuzzyExpander{Store: db}
	}
	engine := search.NewEngine(db, expander)

	results, related, err := engine.Search(query, limit)
	if err != nil {
		return err
	}
	for _, r := range results {
		marker := ""
		if r.Missing {
			marker = "\t(missing)"
		}
		fmt.Printf("%s\t%s%s\n", r.Path, r.Title, marker)
	}
	if len(related) > 0 {
		fmt.Fprintf(os.Stderr, "related: %v\n", related)
	}
	return nil
}

// Serve exposes the read-only search API over HTTP until interrupted.
func (a *App) Serve(ctx context.Context) error {
	cfg := a.config

	db, err := a.openIndex()
	if err != nil {
		return err
	}
	defer db.Close()

	engine := search.NewEngine(db, nil)
	apiRouter := api.NewRouter(engine, cfg.Auth.AuthEnabled(), cfg.Auth.Token)

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

	a.logger.Info("Server starting...",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("index_path", cfg.Index.Path))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			a.logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			a.logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		a.logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	a.logger.Info("Server stopped successfully")
	return nil
}

// MCP serves the index over the Model Context Protocol on stdio.
func (a *App) MCP() error {
	db, err := a.openIndex()
	if err != nil {
		return err
	}
	defer db.Close()

	engine := search.NewEngine(db, nil)
	return mcpserver.New(db, engine).ServeStdio()
}

// discoverFiles runs discovery and refreshes the tracked-files cache.
func (a *App) discoverFiles() ([]string, error) {
	dcfg, err := a.config.Discovery()
	if err != nil {
		return nil, err
	}
	paths, err := discover.Discover(dcfg, a.logger)
	if err != nil {
		return nil, err
	}
	if err := discover.WriteCache(a.config.Index.FilesCache(), paths); err != nil {
		a.logger.Warn("tracked-files cache write failed", slog.String("error", err.Error()))
	}
	a.logger.Info("discovery complete", slog.Int("files", len(paths)))
	return paths, nil
}

func (a *App) runUpdate(ctx context.Context, paths []string, db *index.DB, earlyStop bool) error {
	p := &planner.Planner{
		Extractor: extract.NewExtractor(a.config.Convert.Timeout()),
		EarlyStop: earlyStop,
		Logger:    a.logger,
	}
	stats, err := p.Update(ctx, paths, db)
	if err != nil {
		return err
	}
	a.logger.Info("update complete",
		slog.Int("indexed", stats.Indexed),
		slog.Int("current", stats.Current),
		slog.Int("empty", stats.Empty),
		slog.Int("vanished", stats.Vanished))
	return nil
}

// openIndex attaches to the existing index, turning a missing one into an
// actionable message for the user.
func (a *App) openIndex() (*index.DB, error) {
	db, err := index.Open(a.config.Index.Path)
	if errors.Is(err, apperr.ErrIndexNotFound) {
		return nil, fmt.Errorf("no index found at %s; run 'ansuz build' first", a.config.Index.Path)
	}
	return db, err
}
