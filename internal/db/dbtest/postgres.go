package dbtest

import (
	"context"
	"os"
	"testing"
	"time"

	database "github.com/sebuszqo/ExpenseTracker/internal/db"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// NewPostgres starts a throwaway Postgres container and returns it migrated.
// It skips the test unless INTEGRATION_TEST=1, since it needs a Docker daemon.
func NewPostgres(t testing.TB) *database.DBService {
	t.Helper()
	if os.Getenv("INTEGRATION_TEST") != "1" {
		t.Skip("set INTEGRATION_TEST=1 to run Postgres integration tests")
	}

	ctx := context.Background()
	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("expenses"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(database.DriverPostgres, connStr))

	db, err := database.NewDBService(database.DriverPostgres, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}
