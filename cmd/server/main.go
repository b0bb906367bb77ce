// Package main implements the entry point for the taskdesk API server,
// which lets admins assign tasks to students and track them to verification.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql

	"github.com/phrazzld/taskdesk-api/internal/config"
	"github.com/phrazzld/taskdesk-api/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, status, version, reset, redo) and exit")
	seedAdmin := flag.Bool("seed-admin", false, "create the admin account from the seed configuration and exit")
	flag.Parse()

	cfg, err := loadAppConfig()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	if err := run(context.Background(), cfg, l, *migrateCmd, *seedAdmin); err != nil {
		l.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

// run dispatches to the requested mode: a one-shot command or the HTTP server.
func run(ctx context.Context, cfg *config.Config, l *slog.Logger, migrateCmd string, seedAdmin bool) error {
	if migrateCmd != "" {
		return handleMigrations(ctx, cfg, l, migrateCmd)
	}

	app, err := newApplication(ctx, cfg, l)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if seedAdmin {
		defer app.cleanup()
		return app.seedAdmin(ctx)
	}

	return app.startHTTPServer(ctx, app.setupRouter())
}

// loadAppConfig loads the configuration and logs a redacted summary of it.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"storage", cfg.Database.Storage)

	if cfg.Database.URL != "" {
		slog.Debug("Database configuration", "url_present", true)
	}
	if cfg.Redis.Addr != "" {
		slog.Debug("Login throttling enabled", "limit", cfg.Redis.LoginLimit)
	}
	if cfg.Events.AMQPURL != "" {
		slog.Debug("Event publishing enabled", "exchange", cfg.Events.Exchange)
	}

	return cfg, nil
}
