package domain

import "time"

// Comment is an immutable message appended to a ticket thread.
type Comment struct {
	ID        int64
	TicketID  int64
	UserID    int64
	Body      string
	CreatedAt time.Time
}

// CommentView is a comment joined with its author for display.
type CommentView struct {
	Comment
	AuthorName string
	AuthorRole Role
}
