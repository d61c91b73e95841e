// Package dbtest opens migrated databases for repository tests.
package dbtest

import (
	"path/filepath"
	"testing"

	database "github.com/sebuszqo/ExpenseTracker/internal/db"
	"github.com/stretchr/testify/require"
)

// SQLiteDSN builds a connection string for a database file with foreign keys enforced.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_time_format=sqlite"
}

// NewSQLite returns a migrated SQLite database in a temp dir, closed on cleanup.
func NewSQLite(t testing.TB) *database.DBService {
	t.Helper()

	dsn := SQLiteDSN(filepath.Join(t.TempDir(), "expenses.db"))
	require.NoError(t, database.RunMigrations(database.DriverSQLite, dsn))

	db, err := database.NewDBService(database.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}
