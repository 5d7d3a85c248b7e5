package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/persistence/migrations"
)

// additiveColumn is a column that older databases may lack.
type additiveColumn struct {
	table      string
	column     string
	definition string
}

var additiveColumns = []additiveColumn{
	{table: "users", column: "role", definition: "TEXT NOT NULL DEFAULT 'client'"},
	{table: "tickets", column: "department", definition: "TEXT"},
	{table: "tickets", column: "subcategory", definition: "TEXT"},
}

// MigrateSQLite adds the legacy columns missing from existing tables and then applies the
// embedded SQLite migrations, which rewrite legacy role and status values.
func MigrateSQLite(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	if err := EnsureSQLiteColumns(ctx, db, logger); err != nil {
		return err
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("sqlite migrate driver: %w", err)
	}
	return runMigrations(migrations.SQLite, "sqlite", "sqlite", driver, logger)
}

// MigratePostgres applies the embedded Postgres migrations through the pool.
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping migrations")
		return nil
	}

	// The instance is not closed: closing it would close the shared pool.
	db := stdlib.OpenDBFromPool(pool)
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres migrate ping: %w", err)
	}
	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{MultiStatementEnabled: true})
	if err != nil {
		return fmt.Errorf("postgres migrate driver: %w", err)
	}
	return runMigrations(migrations.Postgres, "postgres", "pgx5", driver, logger)
}

func runMigrations(fsys fs.FS, dir, databaseName string, driver database.Driver, logger *zap.Logger) error {
	source, err := iofs.New(fsys, dir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	instance, err := migrate.NewWithInstance("iofs", source, databaseName, driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	err = instance.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, verr := instance.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", verr)
	}
	logger.Info("migrations applied",
		zap.String("driver", databaseName),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}

// EnsureSQLiteColumns adds the additive columns missing from databases created by older releases.
// Tables that do not exist yet are skipped; the init migration creates them complete.
func EnsureSQLiteColumns(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	for _, col := range additiveColumns {
		tableExists, err := sqliteTableExists(ctx, db, col.table)
		if err != nil {
			return err
		}
		if !tableExists {
			continue
		}
		exists, err := sqliteColumnExists(ctx, db, col.table, col.column)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", col.table, col.column, col.definition)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("add column %s.%s: %w", col.table, col.column, err)
		}
		logger.Info("added legacy column", zap.String("table", col.table), zap.String("column", col.column))
	}
	return nil
}

func sqliteTableExists(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("inspect %s: %w", table, err)
	}
	return n > 0, nil
}

func sqliteColumnExists(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("inspect %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name       string
			colType    string
			notNull    int
			defaultVal sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultVal, &primaryKey); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
