// Package sqlite implements the repositories on a database/sql handle using the modernc driver.
package sqlite

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/spec-kit/helpdesk/internal/repository"
)

// NewStore returns repositories sharing one database handle.
func NewStore(db *sql.DB) repository.Store {
	return repository.Store{
		Users:    &usersRepo{db: db},
		Tickets:  &ticketsRepo{db: db},
		Comments: &commentsRepo{db: db},
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var sqlErr *sqlitedrv.Error
	if errors.As(err, &sqlErr) {
		code := sqlErr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqlErr.Error(), "UNIQUE")) {
			return repository.ErrDuplicate
		}
	}
	return err
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
