package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskdesk-api/internal/platform/logger"
	"github.com/phrazzld/taskdesk-api/internal/platform/postgres"
)

// TestTimeout bounds connection and migration steps.
const TestTimeout = 10 * time.Second

var (
	migrateOnce sync.Once
	migrateErr  error
)

// DatabaseURL returns the connection string for tests, or "" when none is configured.
func DatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return os.Getenv("TASKDESK_TEST_DB_URL")
}

// Open connects to the test database, migrates it to the latest schema and
// closes the connection when the test ends. The test is skipped when no
// database is configured.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	url := DatabaseURL()
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping database test")
	}

	db, err := sql.Open("pgx", url)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "failed to reach test database")

	migrateOnce.Do(func() {
		l, _ := logger.NewTestLogger()
		migrateErr = postgres.Migrate(ctx, db, "up", l)
	})
	require.NoError(t, migrateErr, "failed to migrate test database")

	return db
}

// WithTx runs fn inside a transaction that is always rolled back.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "failed to begin transaction")
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}
