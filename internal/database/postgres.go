package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"product-catalog/internal/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

const (
	driverName          = "postgres"
	migrateSourcePrefix = "file://"
)

// Pinger is the readiness surface of *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Open builds the connection pool from config. The pool is bounded:
// callers beyond the open-connection cap queue on checkout rather than
// failing fast.
func Open(cfg config.Catalog) (*sql.DB, error) {
	db, err := sql.Open(driverName, cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	return db, nil
}

// WaitUntilReady probes the database until it answers, retrying up to
// attempts times with a fixed delay between probes. It bridges the race
// where the service starts before its database is accepting connections.
// Exhausting the budget returns the last probe error; the caller is
// expected to treat that as fatal.
func WaitUntilReady(ctx context.Context, db Pinger, attempts int, delay, pingTimeout time.Duration, logger *slog.Logger) error {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = db.PingContext(pingCtx)
		cancel()

		if lastErr == nil {
			return nil
		}

		logger.Warn("database not ready",
			"attempt", attempt,
			"attempts", attempts,
			"error", lastErr,
		)

		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("database not ready after %d attempts: %w", attempts, lastErr)
}

// Migrate applies the file-source migrations. Running with nothing to
// apply is not an error, so the schema step is idempotent on every start.
func Migrate(databaseURL, migrationsPath string) error {
	m, err := migrate.New(migrateSourcePrefix+migrationsPath, databaseURL)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}
