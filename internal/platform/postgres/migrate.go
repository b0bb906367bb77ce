package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationsDir is the directory inside the embedded filesystem holding the schema migrations.
const MigrationsDir = "migrations"

// MigrationTable is the goose version table.
const MigrationTable = "schema_migrations"

// Migration commands accepted by Migrate.
var migrationCommands = map[string]bool{
	"up":      true,
	"down":    true,
	"status":  true,
	"version": true,
	"reset":   true,
	"redo":    true,
}

// slogGooseLogger routes goose output through slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf implements goose.Logger.
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf implements goose.Logger.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
	os.Exit(1)
}

// Migrate runs a goose command against db using the embedded migrations.
func Migrate(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	if db == nil {
		return fmt.Errorf("migrate: database connection is nil")
	}
	if !migrationCommands[command] {
		return fmt.Errorf("migrate: unsupported command %q", command)
	}
	if logger == nil {
		logger = slog.Default()
	}

	goose.SetBaseFS(migrationsFS)
	goose.SetTableName(MigrationTable)
	goose.SetLogger(&slogGooseLogger{logger: logger.With("component", "migrations")})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	logger.Info("running migrations", "command", command)
	if err := goose.RunContext(ctx, command, db, MigrationsDir); err != nil {
		return fmt.Errorf("migration command %q failed: %w", command, err)
	}
	return nil
}

// Migrations returns the names of the embedded migration files in order.
func Migrations() ([]string, error) {
	entries, err := migrationsFS.ReadDir(MigrationsDir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}
