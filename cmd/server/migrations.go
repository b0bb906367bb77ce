package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskdesk-api/internal/config"
	"github.com/phrazzld/taskdesk-api/internal/platform/postgres"
)

// handleMigrations runs a goose command against the configured database.
func handleMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger, command string) error {
	if cfg.Database.Storage != config.StoragePostgres {
		return fmt.Errorf("migrations require %q storage, got %q", config.StoragePostgres, cfg.Database.Storage)
	}

	db, err := setupAppDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Error("Error closing database connection", "error", cerr)
		}
	}()

	if err := postgres.Migrate(ctx, db, command, logger); err != nil {
		return err
	}

	logger.Info("Migrations finished", "command", command)
	return nil
}
