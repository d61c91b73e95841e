package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sebuszqo/ExpenseTracker/internal/logger"
	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// DBService represents a service that interacts with a database.
type DBService struct {
	DB     *sql.DB
	Driver string
}

// NewDBService opens and pings the database for the given driver.
// Queries are written with $N placeholders; Rebind adapts them for SQLite.
func NewDBService(driver, connStr string) (*DBService, error) {
	if connStr == "" {
		return nil, errors.New("missing database connection string")
	}

	var sqlDriver string
	switch driver {
	case DriverPostgres:
		sqlDriver = "pgx"
	case DriverSQLite:
		sqlDriver = "sqlite"
		connStr = NormalizeSQLiteDSN(connStr)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(sqlDriver, connStr)
	if err != nil {
		return nil, fmt.Errorf("could not open db connection: %w", err)
	}

	if driver == DriverSQLite {
		// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not connect to the database: %w", err)
	}

	return &DBService{DB: db, Driver: driver}, nil
}

var placeholder = regexp.MustCompile(`\$(\d+)`)

// NormalizeSQLiteDSN adds the foreign_keys pragma and the sqlite time format
// to a SQLite DSN unless already present. Parameters in the DSN apply to every
// pooled connection, not only the first one.
func NormalizeSQLiteDSN(connStr string) string {
	for _, param := range []struct{ marker, value string }{
		{"foreign_keys(", "_pragma=foreign_keys(1)"},
		{"_time_format=", "_time_format=sqlite"},
	} {
		if strings.Contains(connStr, param.marker) {
			continue
		}
		sep := "?"
		if strings.Contains(connStr, "?") {
			sep = "&"
		}
		connStr += sep + param.value
	}
	return connStr
}

// Rebind rewrites $N placeholders into SQLite's ?N form.
func (s *DBService) Rebind(query string) string {
	if s.Driver != DriverSQLite {
		return query
	}
	return placeholder.ReplaceAllString(query, "?$1")
}

// IsUniqueViolation reports whether err comes from a unique constraint on either driver.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

// IsForeignKeyViolation reports whether err comes from a foreign key constraint on either driver.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return false
}

// Health checks the health of the database connection by pinging the database.
// It returns a map with keys indicating various health statistics.
func (s *DBService) Health(ctx context.Context) map[string]string {
	stats := make(map[string]string)

	err := s.DB.PingContext(ctx)
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	dbStats := s.DB.Stats()
	stats["status"] = "up"
	stats["message"] = "It's healthy"
	stats["driver"] = s.Driver
	stats["open_connections"] = fmt.Sprintf("%d", dbStats.OpenConnections)
	stats["in_use"] = fmt.Sprintf("%d", dbStats.InUse)
	return stats
}

// Close closes the database connection.
func (s *DBService) Close() error {
	logger.Get().Info("Closing database connection", zap.String("driver", s.Driver))
	return s.DB.Close()
}
