package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
)

const ticketColumns = `t.id, t.title, t.description, t.status, COALESCE(t.department, ''),
        COALESCE(t.subcategory, ''), t.user_id, t.created_at`

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, status, department, subcategory, user_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Department,
		ticket.Subcategory,
		ticket.UserID,
	).Scan(&ticket.ID, &ticket.CreatedAt)
	return mapPgError(err)
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) error {
	const query = `UPDATE tickets SET status=$1 WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets t WHERE t.id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(ticketDest(&ticket)...); err != nil {
		return nil, mapPgError(err)
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	where, args := filterClauses(filter)
	query := fmt.Sprintf(`SELECT %s FROM tickets t WHERE %s ORDER BY t.id DESC`, ticketColumns, where)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(ticketDest(&ticket)...); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) ListWithAuthors(ctx context.Context, filter TicketFilter) ([]domain.AdminTicketRow, error) {
	where, args := filterClauses(filter)
	query := fmt.Sprintf(`SELECT %s, u.name, u.email
        FROM tickets t JOIN users u ON u.id = t.user_id
        WHERE %s ORDER BY t.id DESC`, ticketColumns, where)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.AdminTicketRow{}
	for rows.Next() {
		var row domain.AdminTicketRow
		dest := append(ticketDest(&row.Ticket), &row.AuthorName, &row.AuthorEmail)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *ticketRepository) CountByStatus(ctx context.Context) (domain.TicketCounts, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM tickets GROUP BY status`)
	if err != nil {
		return domain.TicketCounts{}, err
	}
	counts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (statusCount, error) {
		var sc statusCount
		err := row.Scan(&sc.status, &sc.count)
		return sc, err
	})
	if err != nil {
		return domain.TicketCounts{}, err
	}
	byStatus := make(map[domain.TicketStatus]int, len(counts))
	for _, sc := range counts {
		byStatus[sc.status] = sc.count
	}
	return CountsFromRows(byStatus), nil
}

type statusCount struct {
	status domain.TicketStatus
	count  int
}

func ticketDest(ticket *domain.Ticket) []any {
	return []any{
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Department,
		&ticket.Subcategory,
		&ticket.UserID,
		&ticket.CreatedAt,
	}
}

func filterClauses(filter TicketFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("t.user_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("t.status=$%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}
