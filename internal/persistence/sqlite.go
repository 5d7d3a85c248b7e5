package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLite wraps a database/sql handle opened with the modernc driver.
type SQLite struct {
	DB *sql.DB
}

// NewSQLite opens the database file at path. ":memory:" gives a private in-memory database.
func NewSQLite(ctx context.Context, path string, logger *zap.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// A single connection serializes writers and keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	logger.Info("opened sqlite database", zap.String("path", path))
	return &SQLite{DB: db}, nil
}

// Ping verifies the database is reachable.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// Close releases the handle.
func (s *SQLite) Close() {
	if s != nil && s.DB != nil {
		_ = s.DB.Close()
	}
}
