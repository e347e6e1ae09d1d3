// Package testdb provides helpers for tests that need a real PostgreSQL
// database. The helpers are compiled only with the integration build tag
// and skip the calling test when no database URL is configured.
//
// Each test runs inside a transaction that is rolled back afterwards, so
// tests do not see each other's rows:
//
//	db := testdb.GetTestDB(t)
//	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//		habits := postgres.NewPostgresHabitStore(tx, nil)
//		// ...
//	})
package testdb
