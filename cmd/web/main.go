// Command web is the Voleibol Stats website.
//
// Usage:
//
//	voleibol-web
//	PORT=8080 DATABASE_URL=postgres://... voleibol-web
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/voleibolstats/voleibol-web/internal/api"
	"github.com/voleibolstats/voleibol-web/internal/api/render"
	"github.com/voleibolstats/voleibol-web/internal/cache"
	"github.com/voleibolstats/voleibol-web/internal/config"
	"github.com/voleibolstats/voleibol-web/internal/db"
	"github.com/voleibolstats/voleibol-web/internal/locale"
	"github.com/voleibolstats/voleibol-web/internal/store"
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// The pool is built on the first query; without DATABASE_URL every page
	// renders with empty sections.
	pools := db.NewLazy(cfg)
	defer pools.Close()
	if cfg.HasDatabase() {
		logger.Info("Database configured",
			"min_conns", cfg.DBPoolMinConns,
			"max_conns", cfg.DBPoolMaxConns(),
			"recycle", cfg.DBPoolRecycle,
			"schema_variant", cfg.SchemaVariant)
	} else {
		logger.Warn("DATABASE_URL not set, serving empty pages")
	}
	src := store.New(pools, cfg.SchemaVariant, logger)

	pages, err := render.New()
	if err != nil {
		logger.Error("Failed to parse templates", "error", err)
		os.Exit(1)
	}

	// Initialize cache
	pageCache := cache.New(cfg.CacheEnabled, cfg.CacheTTL)
	logger.Info("Cache initialized", "enabled", pageCache.Enabled(), "ttl", cfg.CacheTTL)

	sessions := locale.NewSessions(cfg.SessionSecret, cfg.IsProduction(), logger)
	loc := locale.NewResolver(sessions, cfg.DefaultLanguage)

	// Create router
	router := api.NewRouter(src, pages, pageCache, loc, cfg, logger)

	// Create HTTP server
	addr := cfg.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second + cfg.DBAcquireTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Voleibol Stats",
			"addr", addr,
			"environment", cfg.Environment,
			"default_language", cfg.DefaultLanguage)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := cfg.LogLevel
	if cfg.Debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
