package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Department  string `json:"department" form:"department"`
	Subcategory string `json:"subcategory" form:"subcategory"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status" form:"status"`
}

// AddCommentRequest payload.
type AddCommentRequest struct {
	Body string `json:"body" form:"body"`
}

// TicketView response.
type TicketView struct {
	ID          int64               `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      domain.TicketStatus `json:"status"`
	Department  string              `json:"department"`
	Subcategory string              `json:"subcategory"`
	UserID      int64               `json:"user_id"`
	CreatedAt   time.Time           `json:"created_at"`
}

// AdminTicketView is a ticket row of the admin console.
type AdminTicketView struct {
	TicketView
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
}

// CommentView response.
type CommentView struct {
	ID         int64       `json:"id"`
	TicketID   int64       `json:"ticket_id"`
	UserID     int64       `json:"user_id"`
	Body       string      `json:"body"`
	AuthorName string      `json:"author_name,omitempty"`
	AuthorRole domain.Role `json:"author_role,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// KPIView holds the admin dashboard totals.
type KPIView struct {
	Open       int `json:"open"`
	InProgress int `json:"in_progress"`
	Closed     int `json:"closed"`
	Total      int `json:"total"`
}

// NewTicketView maps a domain ticket.
func NewTicketView(ticket *domain.Ticket) TicketView {
	return TicketView{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      ticket.Status,
		Department:  ticket.Department,
		Subcategory: ticket.Subcategory,
		UserID:      ticket.UserID,
		CreatedAt:   ticket.CreatedAt,
	}
}

// NewTicketViews maps a listing.
func NewTicketViews(tickets []domain.Ticket) []TicketView {
	items := make([]TicketView, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketView(&tickets[i]))
	}
	return items
}

// NewAdminTicketViews maps admin console rows.
func NewAdminTicketViews(rows []domain.AdminTicketRow) []AdminTicketView {
	items := make([]AdminTicketView, 0, len(rows))
	for i := range rows {
		items = append(items, AdminTicketView{
			TicketView:  NewTicketView(&rows[i].Ticket),
			AuthorName:  rows[i].AuthorName,
			AuthorEmail: rows[i].AuthorEmail,
		})
	}
	return items
}

// NewCommentView maps a stored comment.
func NewCommentView(comment *domain.Comment) CommentView {
	return CommentView{
		ID:        comment.ID,
		TicketID:  comment.TicketID,
		UserID:    comment.UserID,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
	}
}

// NewCommentViews maps a thread joined with authors.
func NewCommentViews(comments []domain.CommentView) []CommentView {
	items := make([]CommentView, 0, len(comments))
	for i := range comments {
		view := NewCommentView(&comments[i].Comment)
		view.AuthorName = comments[i].AuthorName
		view.AuthorRole = comments[i].AuthorRole
		items = append(items, view)
	}
	return items
}

// NewKPIView maps dashboard counts.
func NewKPIView(counts domain.TicketCounts) KPIView {
	return KPIView{
		Open:       counts.Open,
		InProgress: counts.InProgress,
		Closed:     counts.Closed,
		Total:      counts.Total,
	}
}
