package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

type commentsRepo struct {
	db *sql.DB
}

func (r *commentsRepo) Create(ctx context.Context, comment *domain.Comment) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (ticket_id, user_id, body, created_at) VALUES (?, ?, ?, ?)`,
		comment.TicketID, comment.UserID, comment.Body, formatTime(now),
	)
	if err != nil {
		return mapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	comment.ID = id
	comment.CreatedAt = now
	return nil
}

func (r *commentsRepo) ListByTicket(ctx context.Context, ticketID int64) ([]domain.CommentView, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.ticket_id, c.user_id, c.body, c.created_at, u.name, u.role
         FROM comments c JOIN users u ON u.id = c.user_id
         WHERE c.ticket_id = ? ORDER BY c.id ASC`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.CommentView{}
	for rows.Next() {
		var (
			view      domain.CommentView
			createdAt string
			role      string
		)
		if err := rows.Scan(
			&view.ID,
			&view.TicketID,
			&view.UserID,
			&view.Body,
			&createdAt,
			&view.AuthorName,
			&role,
		); err != nil {
			return nil, err
		}
		view.CreatedAt = parseTime(createdAt)
		view.AuthorRole = domain.Role(role)
		result = append(result, view)
	}
	return result, rows.Err()
}
