package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// IsPostgresDSN reports whether dsn selects the pgx backend.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Open connects to the database named by dsn, runs migrations and returns the
// handle together with the matching RepositoryManager. postgres:// URLs use
// pgx; anything else is treated as a SQLite file path or URI.
//
// SQLite handles are limited to a single connection so that writes are
// serialised and ":memory:" databases stay on one connection.
func Open(ctx context.Context, dsn string) (*sql.DB, RepositoryManager, error) {
	var (
		driver string
		m      RepositoryManager
	)
	if IsPostgresDSN(dsn) {
		driver, m = "pgx", &PostgresRepositoryManager{}
	} else {
		driver, m = "sqlite", &SQLiteRepositoryManager{}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db ping error: %w", err)
	}

	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migration error: %w", err)
	}

	return db, m, nil
}
