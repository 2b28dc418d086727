package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"expense-tracker/internal/audit"
	"expense-tracker/internal/auth"
	"expense-tracker/internal/config"
	"expense-tracker/internal/observability/metrics"
	"expense-tracker/internal/settlement/application"
	"expense-tracker/internal/settlement/infrastructure/postgres"
	"expense-tracker/internal/settlement/interfaces"
	"expense-tracker/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	db, err := sql.Open("pgx", cfg.PostgresDSN)
	if err != nil {
		slog.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := postgres.Migrate(db); err != nil {
		slog.Error("run migrations", "error", err)
		os.Exit(1)
	}
	metrics.RegisterDBMetrics(db)

	repo := postgres.NewRepository(db)
	service, err := application.NewEventService(repo, nil)
	if err != nil {
		slog.Error("build event service", "error", err)
		os.Exit(1)
	}
	auditLogger := audit.NewPostgresLogger(db)

	eventsHandler, err := interfaces.NewEventsHandler(service, auditLogger)
	if err != nil {
		slog.Error("build events handler", "error", err)
		os.Exit(1)
	}
	fundHandler, err := interfaces.NewFundHandler(service, auditLogger)
	if err != nil {
		slog.Error("build fund handler", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/events", eventsHandler)
	mux.Handle("/api/v1/events/", eventsHandler)
	mux.Handle("/api/v1/fund/", fundHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "db unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var handler http.Handler = mux
	if cfg.JWTSecret != "" {
		handler = auth.NewMiddleware([]byte(cfg.JWTSecret), auth.DefaultPolicy()).Wrap(mux)
	} else {
		slog.Warn("JWT secret not configured, API is unauthenticated")
	}
	handler = requestLogging(handler)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
}

func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
