package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cs334f24/git-learner/internal/config"
	"github.com/cs334f24/git-learner/internal/githubapp"
	"github.com/cs334f24/git-learner/internal/handler"
	"github.com/cs334f24/git-learner/internal/modules"
	"github.com/cs334f24/git-learner/internal/repository/sqlite"
	"github.com/cs334f24/git-learner/internal/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load configuration", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	gh, err := githubapp.New(cfg.GitHubAppID, cfg.GitHubPrivateKeyPath, cfg.GitHubOrganization)
	if err != nil {
		slog.Error("failed to authenticate github app", "error", err)
		os.Exit(1)
	}

	registry, err := modules.BuildRegistry()
	if err != nil {
		slog.Error("failed to build module registry", "error", err)
		os.Exit(1)
	}

	authService := service.NewAuthService(db.Users(), cfg.OAuthClientID, cfg.OAuthClientSecret, cfg.RedirectURL(), cfg.JWTSecret)
	sessionService := service.NewSessionService(registry, gh, cfg.GitHubOrganization, db.Modules(), db.Sessions())

	// Mirror registered modules into the modules table (idempotent).
	if err := sessionService.SeedModules(context.Background()); err != nil {
		slog.Error("failed to seed modules", "error", err)
		os.Exit(1)
	}
	slog.Info("modules seeded", "count", len(registry.List()))

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, authService, sessionService, cfg.CookieSecure)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.SecurityHeaders(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
