package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
)

const ticketColumns = `t.id, t.title, t.description, t.status, COALESCE(t.department, ''),
    COALESCE(t.subcategory, ''), t.user_id, t.created_at`

type ticketsRepo struct {
	db *sql.DB
}

func (r *ticketsRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tickets (title, description, status, department, subcategory, user_id, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ticket.Title, ticket.Description, string(ticket.Status),
		ticket.Department, ticket.Subcategory, ticket.UserID, formatTime(now),
	)
	if err != nil {
		return mapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ticket.ID = id
	ticket.CreatedAt = now
	return nil
}

func (r *ticketsRepo) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets t WHERE t.id = ?`, id)
	var ticket domain.Ticket
	if err := scanTicket(row.Scan, &ticket); err != nil {
		return nil, mapError(err)
	}
	return &ticket, nil
}

func (r *ticketsRepo) UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tickets SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(res)
}

func (r *ticketsRepo) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	where, args := whereClause(filter)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ticketColumns+` FROM tickets t WHERE `+where+` ORDER BY t.id DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows.Scan, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (r *ticketsRepo) ListWithAuthors(ctx context.Context, filter repository.TicketFilter) ([]domain.AdminTicketRow, error) {
	where, args := whereClause(filter)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ticketColumns+`, u.name, u.email
         FROM tickets t JOIN users u ON u.id = t.user_id
         WHERE `+where+` ORDER BY t.id DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.AdminTicketRow{}
	for rows.Next() {
		var row domain.AdminTicketRow
		if err := scanTicket(rows.Scan, &row.Ticket, &row.AuthorName, &row.AuthorEmail); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *ticketsRepo) CountByStatus(ctx context.Context) (domain.TicketCounts, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM tickets GROUP BY status`)
	if err != nil {
		return domain.TicketCounts{}, err
	}
	defer rows.Close()

	byStatus := map[domain.TicketStatus]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return domain.TicketCounts{}, err
		}
		byStatus[domain.TicketStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return domain.TicketCounts{}, err
	}
	return repository.CountsFromRows(byStatus), nil
}

func scanTicket(scan func(dest ...any) error, ticket *domain.Ticket, extra ...any) error {
	var (
		status    string
		createdAt string
	)
	dest := []any{
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&status,
		&ticket.Department,
		&ticket.Subcategory,
		&ticket.UserID,
		&createdAt,
	}
	if err := scan(append(dest, extra...)...); err != nil {
		return err
	}
	ticket.Status = domain.TicketStatus(status)
	ticket.CreatedAt = parseTime(createdAt)
	return nil
}

func whereClause(filter repository.TicketFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.OwnerID != nil {
		clauses = append(clauses, "t.user_id = ?")
		args = append(args, *filter.OwnerID)
	}
	if filter.Status != nil {
		clauses = append(clauses, "t.status = ?")
		args = append(args, string(*filter.Status))
	}
	return strings.Join(clauses, " AND "), args
}
