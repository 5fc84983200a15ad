// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/ocourse/internal/auth"
	"github.com/olegiv/ocourse/internal/cache"
	"github.com/olegiv/ocourse/internal/config"
	"github.com/olegiv/ocourse/internal/handler"
	"github.com/olegiv/ocourse/internal/handler/api"
	"github.com/olegiv/ocourse/internal/logging"
	"github.com/olegiv/ocourse/internal/middleware"
	"github.com/olegiv/ocourse/internal/scheduler"
	"github.com/olegiv/ocourse/internal/store"
	"github.com/olegiv/ocourse/internal/version"
)

// Per-admin request budget once authenticated.
const (
	adminRPS   = 20
	adminBurst = 60
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "oCourse - course platform admin API\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCOURSE_JWT_SECRET       Token signing key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCOURSE_DB_DRIVER        Database driver: sqlite|mysql (default: sqlite)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCOURSE_DB_DSN           Database path or DSN (default: ./data/ocourse.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCOURSE_SERVER_PORT      Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCOURSE_ENV              Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCOURSE_TOKEN_HEADER     Header carrying the admin token (default: token)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCOURSE_REDIS_URL        Redis URL for shared login lockouts (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCOURSE_DO_SEED          Create settings and a bootstrap admin (default: false)\n")
		_, _ = fmt.Fprintf(os.Stderr, "\nFor more information, see: https://github.com/olegiv/ocourse\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Println(version.Get().String())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(newLogHandler(cfg, nil)))

	if cfg.DBDriver == config.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.DBDSN), 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}

	slog.Info("initializing database", "driver", cfg.DBDriver)
	db, dialect, err := store.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db, dialect); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	st := store.New(db, dialect)

	// Upgrade logger to also write WARN and ERROR logs to the audit table
	slog.SetDefault(slog.New(newLogHandler(cfg, st.Events)))
	slog.Info("event log integration enabled", "min_level", "warn")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.DoSeed {
		if err := store.Seed(ctx, st, store.SeedOptions{
			AdminEmail:    cfg.AdminEmail,
			AdminUsername: cfg.AdminUsername,
			AdminPassword: cfg.AdminPassword,
			AdminRole:     cfg.AdminRole,
		}); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	counters, countersCheck, err := newCounters(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = counters.Close() }()

	logins := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig(), counters)
	go logins.RunCleanup(ctx, 5*time.Minute)

	sched := scheduler.New(st.Events, scheduler.Config{
		PruneSchedule:  cfg.PruneSchedule,
		EventRetention: cfg.EventRetention,
	}, slog.Default())
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL, cfg.JWTIssuer)
	authCfg := middleware.AdminAuthConfig{
		Tokens: tokens,
		Users:  st.Users,
		Header: cfg.TokenHeader,
		Role:   cfg.AdminRole,
	}

	apiHandler := api.NewHandler(api.Deps{
		Articles:   st.Articles,
		Categories: st.Categories,
		Courses:    st.Courses,
		Chapters:   st.Chapters,
		Users:      st.Users,
		Settings:   st.Settings,
		Tokens:     tokens,
		Logins:     logins,
		AdminRole:  cfg.AdminRole,
		Production: cfg.IsProduction(),
	})

	checks := map[string]handler.Pinger{"database": st}
	if countersCheck != nil {
		checks["counters"] = countersCheck
	}
	healthCfg := handler.HealthConfig{
		Checks:  checks,
		Version: version.Get().Version,
		IsAdmin: authCfg.IsAdmin,
	}
	if cfg.DBDriver == config.DriverSQLite {
		healthCfg.DataDir = filepath.Dir(cfg.DBDSN)
	}
	healthHandler := handler.NewHealthHandler(healthCfg)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestContext)
	r.Use(middleware.AccessLog(slog.Default()))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.StripSlashes)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))

	r.NotFound(api.NotFound)
	r.MethodNotAllowed(api.MethodNotAllowed)

	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	gate := func(next http.Handler) http.Handler {
		return middleware.AdminAuth(authCfg)(middleware.PrincipalRateLimit(adminRPS, adminBurst)(next))
	}
	r.With(middleware.RateLimit(cfg.RateLimit, time.Minute)).
		Mount("/admin", apiHandler.Routes(gate, logins.Middleware()))

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", version.Get().Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// newLogHandler builds the text or JSON handler selected by cfg. A non-nil
// sink additionally persists WARN and ERROR records.
func newLogHandler(cfg *config.Config, sink logging.EventSink) slog.Handler {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	var inner slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		inner = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		inner = slog.NewTextHandler(os.Stdout, opts)
	}
	return logging.NewEventLogHandler(inner, sink)
}

// newCounters returns the login counter store and, for Redis, a pinger for
// the health check.
func newCounters(cfg *config.Config) (cache.Counter, handler.Pinger, error) {
	if !cfg.UseRedis() {
		slog.Info("login counters initialized", "backend", "memory")
		return cache.NewMemoryCounter(time.Minute), nil, nil
	}

	rc, err := cache.NewRedisCounterFromURL(cfg.RedisURL, cfg.RedisPrefix)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to redis: %w", err)
	}
	slog.Info("login counters initialized", "backend", "redis")
	return rc, rc, nil
}
