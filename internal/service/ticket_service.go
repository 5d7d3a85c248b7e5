package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

const (
	ticketsPage      = "/tickets"
	bodyPreviewRunes = 80
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	taxonomy   domain.Taxonomy
	policy     auth.Policy
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	Taxonomy    domain.Taxonomy
	Policy      auth.Policy
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Department  string
	Subcategory string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		taxonomy:   deps.Taxonomy,
		policy:     deps.Policy,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Taxonomy returns the department/subcategory catalogue tickets are filed against.
func (s *TicketService) Taxonomy() domain.Taxonomy {
	return s.taxonomy
}

// CreateTicket opens a ticket owned by user.
func (s *TicketService) CreateTicket(ctx context.Context, user *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if user == nil {
		return nil, apperrors.NewUnauthorized("login required")
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	department := strings.TrimSpace(input.Department)
	subcategory := strings.TrimSpace(input.Subcategory)

	missing := []string{}
	for _, field := range []struct{ name, value string }{
		{"title", title},
		{"description", description},
		{"department", department},
		{"subcategory", subcategory},
	} {
		if field.value == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("all ticket fields are required",
			map[string]any{"missing": missing})
	}
	if !s.taxonomy.Allows(department, subcategory) {
		return nil, apperrors.NewInvalidTaxonomy(department, subcategory)
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		Status:      domain.TicketStatusOpen,
		Department:  department,
		Subcategory: subcategory,
		UserID:      user.ID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	publish(ctx, s.dispatcher, s.logger, events.New(events.EventTicketCreated, user, ticket.ID,
		events.TicketCreatedPayload{Title: title, Department: department, Subcategory: subcategory}))
	return ticket, nil
}

// ListTickets returns the caller's own tickets, newest first.
// An unrecognized status filter is treated as no filter.
func (s *TicketService) ListTickets(ctx context.Context, user *domain.User, statusFilter string) ([]domain.Ticket, error) {
	if user == nil {
		return nil, apperrors.NewUnauthorized("login required")
	}
	ownerID := user.ID
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{
		OwnerID: &ownerID,
		Status:  domain.ParseStatusFilter(statusFilter),
	})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return tickets, nil
}

// GetTicket returns a ticket the user may view. Absent and hidden tickets are both NotFound.
func (s *TicketService) GetTicket(ctx context.Context, user *domain.User, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ticketNotFound(id)
		}
		return nil, apperrors.NewInternalError(err)
	}
	if !s.policy.CanViewTicket(user, ticket) {
		return nil, ticketNotFound(id)
	}
	return ticket, nil
}

// UpdateStatus moves a ticket to newStatus. Any of the three states may follow any other.
func (s *TicketService) UpdateStatus(ctx context.Context, user *domain.User, id int64, newStatus string) (*domain.Ticket, error) {
	status := domain.TicketStatus(strings.TrimSpace(newStatus))
	if !status.Valid() {
		return nil, apperrors.NewInvalidStatus(newStatus)
	}

	ticket, err := s.ticketForMutation(ctx, user, id)
	if err != nil {
		return nil, err
	}

	previous := ticket.Status
	if err := s.tickets.UpdateStatus(ctx, ticket.ID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ticketNotFound(id)
		}
		return nil, apperrors.NewInternalError(err)
	}
	ticket.Status = status

	if previous != status {
		publish(ctx, s.dispatcher, s.logger, events.New(events.EventTicketStatusChanged, user, ticket.ID,
			events.TicketStatusChangedPayload{OldStatus: previous, NewStatus: status}))
	}
	return ticket, nil
}

// AddComment appends a trimmed comment to the ticket thread.
func (s *TicketService) AddComment(ctx context.Context, user *domain.User, id int64, body string) (*domain.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewEmptyBody()
	}

	ticket, err := s.ticketForMutation(ctx, user, id)
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		TicketID: ticket.ID,
		UserID:   user.ID,
		Body:     body,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	publish(ctx, s.dispatcher, s.logger, events.New(events.EventTicketCommentAdded, user, ticket.ID,
		events.TicketCommentAddedPayload{CommentID: comment.ID, BodyPreview: preview(body)}))
	return comment, nil
}

// ListComments returns the thread of a ticket the user may view, oldest first.
func (s *TicketService) ListComments(ctx context.Context, user *domain.User, id int64) ([]domain.CommentView, error) {
	if _, err := s.GetTicket(ctx, user, id); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return comments, nil
}

// AdminListTickets returns every ticket with its author, newest first.
func (s *TicketService) AdminListTickets(ctx context.Context, user *domain.User, statusFilter string) ([]domain.AdminTicketRow, error) {
	if !s.policy.CanAccessAdminConsole(user) {
		return nil, apperrors.NewForbidden("admin access required", "/app")
	}
	rows, err := s.tickets.ListWithAuthors(ctx, repository.TicketFilter{
		Status: domain.ParseStatusFilter(statusFilter),
	})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return rows, nil
}

// Dashboard returns per-status ticket totals for administrators.
func (s *TicketService) Dashboard(ctx context.Context, user *domain.User) (domain.TicketCounts, error) {
	if !s.policy.CanAccessAdminConsole(user) {
		return domain.TicketCounts{}, apperrors.NewForbidden("admin access required", "/app")
	}
	counts, err := s.tickets.CountByStatus(ctx)
	if err != nil {
		return domain.TicketCounts{}, apperrors.NewInternalError(err)
	}
	return counts, nil
}

// ticketForMutation loads a ticket the user may change. Callers without rights get
// Forbidden whether or not the ticket exists; admins get NotFound for missing tickets.
func (s *TicketService) ticketForMutation(ctx context.Context, user *domain.User, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewInternalError(err)
		}
		if s.policy.CanAccessAdminConsole(user) {
			return nil, ticketNotFound(id)
		}
		return nil, apperrors.NewForbidden("not allowed to modify this ticket", ticketsPage)
	}
	if !s.policy.CanMutateTicket(user, ticket) {
		return nil, apperrors.NewForbidden("not allowed to modify this ticket", ticketsPage)
	}
	return ticket, nil
}

func ticketNotFound(id int64) error {
	return apperrors.NewNotFound("ticket", map[string]any{"id": id})
}

func preview(body string) string {
	if utf8.RuneCountInString(body) <= bodyPreviewRunes {
		return body
	}
	runes := []rune(body)
	return string(runes[:bodyPreviewRunes]) + "…"
}
