package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketStatuses lists every valid status in display order.
var TicketStatuses = []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed}

// Valid reports whether s is one of the three lifecycle states.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return true
	}
	return false
}

// ParseStatusFilter turns a raw query value into a list filter.
// Unrecognized values yield nil, meaning "no filter", rather than an error.
func ParseStatusFilter(raw string) *TicketStatus {
	status := TicketStatus(strings.TrimSpace(raw))
	if !status.Valid() {
		return nil
	}
	return &status
}

// Ticket is a help-desk request owned by the user who opened it.
type Ticket struct {
	ID          int64
	Title       string
	Description string
	Status      TicketStatus
	Department  string
	Subcategory string
	UserID      int64
	CreatedAt   time.Time
}

// AdminTicketRow is a ticket joined with its author's identity.
type AdminTicketRow struct {
	Ticket
	AuthorName  string
	AuthorEmail string
}

// TicketCounts holds per-status totals for the admin dashboard.
type TicketCounts struct {
	Open       int
	InProgress int
	Closed     int
	Total      int
}
