package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Techtees/civicpro/internal/analytics"
	"github.com/Techtees/civicpro/internal/api"
	"github.com/Techtees/civicpro/internal/config"
	"github.com/Techtees/civicpro/internal/models"
	"github.com/Techtees/civicpro/internal/storage"
)

func main() {
	// Structured logging setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := openStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err, "driver", cfg.DatabaseDriver)
		os.Exit(1)
	}

	if err := seedAdmin(context.Background(), store, cfg); err != nil {
		slog.Error("Failed to seed admin user", "error", err)
		os.Exit(1)
	}

	svc := analytics.NewService(store, logger)
	auth := api.NewAuth(store, cfg.JWTSecret, cfg.SessionTTL)
	router := api.NewRouter(store, svc, auth, logger, api.RouterConfig{
		CORSOrigins:         cfg.CORSOrigins,
		RatingRatePerMinute: cfg.RatingRatePerMinute,
		RatingRateBurst:     cfg.RatingRateBurst,
	})

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Port, "driver", cfg.DatabaseDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.DatabaseDriver {
	case "postgres":
		return storage.OpenPostgres(cfg.DatabaseURL)
	default:
		return storage.OpenSQLite(cfg.DataDir)
	}
}

// seedAdmin creates the configured admin account when it does not exist yet.
// Skipped when no admin password is configured.
func seedAdmin(ctx context.Context, store storage.Store, cfg *config.Config) error {
	if cfg.AdminPassword == "" {
		slog.Warn("ADMIN_PASSWORD not set, skipping admin account seeding")
		return nil
	}
	if _, err := store.UserByUsername(ctx, cfg.AdminUsername); err == nil {
		return nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	hash, err := api.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	admin := models.NewUser(cfg.AdminUsername, hash, true)
	if err := store.CreateUser(ctx, admin); err != nil {
		return err
	}
	slog.Info("Seeded admin account", "username", cfg.AdminUsername)
	return nil
}
