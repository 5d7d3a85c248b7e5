package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPostgresStore returns repositories backed by a pgx pool.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return Store{
		Users:    NewUserRepository(pool),
		Tickets:  NewTicketRepository(pool),
		Comments: NewCommentRepository(pool),
	}
}

func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}
