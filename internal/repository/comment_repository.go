package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
)

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository builds repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (ticket_id, user_id, body)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		comment.TicketID,
		comment.UserID,
		comment.Body,
	).Scan(&comment.ID, &comment.CreatedAt)
	return mapPgError(err)
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.CommentView, error) {
	const query = `
        SELECT c.id, c.ticket_id, c.user_id, c.body, c.created_at, u.name, u.role
        FROM comments c JOIN users u ON u.id = c.user_id
        WHERE c.ticket_id=$1 ORDER BY c.id ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.CommentView{}
	for rows.Next() {
		var view domain.CommentView
		if err := rows.Scan(
			&view.ID,
			&view.TicketID,
			&view.UserID,
			&view.Body,
			&view.CreatedAt,
			&view.AuthorName,
			&view.AuthorRole,
		); err != nil {
			return nil, err
		}
		result = append(result, view)
	}
	return result, rows.Err()
}
