package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/helpdesk/internal/domain"
)

var (
	// ErrNotFound is returned when no row matches.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	// Create inserts the user and fills in ID and CreatedAt.
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateName(ctx context.Context, id int64, name string) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}

// TicketFilter narrows ticket listings. Nil fields do not filter.
type TicketFilter struct {
	OwnerID *int64
	Status  *domain.TicketStatus
}

// TicketRepository encapsulates ticket persistence. Listings are newest first.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) error
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	ListWithAuthors(ctx context.Context, filter TicketFilter) ([]domain.AdminTicketRow, error)
	CountByStatus(ctx context.Context) (domain.TicketCounts, error)
}

// CommentRepository manages ticket comment threads. Listings are oldest first.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.CommentView, error)
}

// Store bundles the repositories of one backing database.
type Store struct {
	Users    UserRepository
	Tickets  TicketRepository
	Comments CommentRepository
}

// CountsFromRows folds (status, count) pairs into dashboard totals.
func CountsFromRows(rows map[domain.TicketStatus]int) domain.TicketCounts {
	counts := domain.TicketCounts{
		Open:       rows[domain.TicketStatusOpen],
		InProgress: rows[domain.TicketStatusInProgress],
		Closed:     rows[domain.TicketStatusClosed],
	}
	for _, n := range rows {
		counts.Total += n
	}
	return counts
}
