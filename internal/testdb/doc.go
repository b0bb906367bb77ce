// Package testdb provides helpers for tests that run against a real PostgreSQL
// database.
//
// Tests using it are skipped unless DATABASE_URL (or TASKDESK_TEST_DB_URL) is
// set. The schema is migrated once per test binary, and each test runs inside a
// transaction that is rolled back when it finishes, so tests may run in
// parallel without cleaning up after themselves:
//
//	func TestSomething(t *testing.T) {
//		db := testdb.Open(t)
//		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//			users := postgres.NewPostgresUserStore(tx)
//			// ...
//		})
//	}
package testdb
