package auth

import "github.com/spec-kit/helpdesk/internal/domain"

// Policy holds the owner-or-admin access rules. Every ticket and comment
// operation goes through it; a nil user is denied everything.
type Policy struct{}

// CanViewTicket reports whether user may read ticket and its comments.
func (Policy) CanViewTicket(user *domain.User, ticket *domain.Ticket) bool {
	if user == nil || ticket == nil {
		return false
	}
	return user.IsAdmin() || ticket.UserID == user.ID
}

// CanMutateTicket reports whether user may change the status of or comment on ticket.
// Mutation rights are symmetric with view rights.
func (p Policy) CanMutateTicket(user *domain.User, ticket *domain.Ticket) bool {
	return p.CanViewTicket(user, ticket)
}

// CanAccessAdminConsole reports whether user may list every ticket.
func (Policy) CanAccessAdminConsole(user *domain.User) bool {
	return user.IsAdmin()
}
