package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/repository"
)

func newTestStore(t *testing.T) repository.Store {
	t.Helper()
	ctx := context.Background()
	db, err := persistence.NewSQLite(ctx, ":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, persistence.MigrateSQLite(ctx, db.DB, zap.NewNop()))
	return NewStore(db.DB)
}

func createUser(t *testing.T, store repository.Store, email string, role domain.Role) *domain.User {
	t.Helper()
	user := &domain.User{Name: "User " + email, Email: email, PasswordHash: "hash", Role: role}
	require.NoError(t, store.Users.Create(context.Background(), user))
	return user
}

func TestUsersRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	user := createUser(t, store, "ana@example.com", domain.RoleClient)
	assert.NotZero(t, user.ID)
	assert.WithinDuration(t, time.Now(), user.CreatedAt, 5*time.Second)

	byEmail, err := store.Users.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, domain.RoleClient, byEmail.Role)
	assert.Equal(t, user.CreatedAt.Truncate(time.Microsecond), byEmail.CreatedAt.Truncate(time.Microsecond))

	require.NoError(t, store.Users.UpdateName(ctx, user.ID, "Ana"))
	require.NoError(t, store.Users.UpdatePasswordHash(ctx, user.ID, "other"))

	byID, err := store.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", byID.Name)
	assert.Equal(t, "other", byID.PasswordHash)

	_, err = store.Users.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, store.Users.UpdateName(ctx, 9999, "x"), repository.ErrNotFound)
}

func TestUsersDuplicateEmail(t *testing.T) {
	store := newTestStore(t)
	createUser(t, store, "dup@example.com", domain.RoleClient)

	err := store.Users.Create(context.Background(), &domain.User{
		Name: "Other", Email: "dup@example.com", PasswordHash: "h", Role: domain.RoleClient,
	})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestTicketsListingAndFilters(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	alice := createUser(t, store, "alice@example.com", domain.RoleClient)
	bob := createUser(t, store, "bob@example.com", domain.RoleClient)

	mk := func(owner int64, title string) *domain.Ticket {
		ticket := &domain.Ticket{
			Title: title, Description: "d", Status: domain.TicketStatusOpen,
			Department: "Support", Subcategory: "Hardware", UserID: owner,
		}
		require.NoError(t, store.Tickets.Create(ctx, ticket))
		return ticket
	}
	a1 := mk(alice.ID, "a1")
	a2 := mk(alice.ID, "a2")
	b1 := mk(bob.ID, "b1")
	require.NoError(t, store.Tickets.UpdateStatus(ctx, a1.ID, domain.TicketStatusClosed))

	all, err := store.Tickets.List(ctx, repository.TicketFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{b1.ID, a2.ID, a1.ID}, []int64{all[0].ID, all[1].ID, all[2].ID})

	owned, err := store.Tickets.List(ctx, repository.TicketFilter{OwnerID: &alice.ID})
	require.NoError(t, err)
	require.Len(t, owned, 2)

	closed := domain.TicketStatusClosed
	closedOwned, err := store.Tickets.List(ctx, repository.TicketFilter{OwnerID: &alice.ID, Status: &closed})
	require.NoError(t, err)
	require.Len(t, closedOwned, 1)
	assert.Equal(t, a1.ID, closedOwned[0].ID)

	rows, err := store.Tickets.ListWithAuthors(ctx, repository.TicketFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "bob@example.com", rows[0].AuthorEmail)
	assert.Equal(t, bob.Name, rows[0].AuthorName)

	counts, err := store.Tickets.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketCounts{Open: 2, InProgress: 0, Closed: 1, Total: 3}, counts)

	got, err := store.Tickets.GetByID(ctx, a2.ID)
	require.NoError(t, err)
	assert.Equal(t, "a2", got.Title)
	assert.Equal(t, "Support", got.Department)
	assert.Equal(t, domain.TicketStatusOpen, got.Status)

	assert.ErrorIs(t, store.Tickets.UpdateStatus(ctx, 9999, domain.TicketStatusOpen), repository.ErrNotFound)
}

func TestCommentsThread(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	owner := createUser(t, store, "owner@example.com", domain.RoleClient)
	admin := createUser(t, store, "admin@example.com", domain.RoleAdmin)

	ticket := &domain.Ticket{Title: "t", Description: "d", Status: domain.TicketStatusOpen, UserID: owner.ID}
	require.NoError(t, store.Tickets.Create(ctx, ticket))

	for _, c := range []*domain.Comment{
		{TicketID: ticket.ID, UserID: owner.ID, Body: "first"},
		{TicketID: ticket.ID, UserID: admin.ID, Body: "second"},
	} {
		require.NoError(t, store.Comments.Create(ctx, c))
		assert.NotZero(t, c.ID)
	}

	thread, err := store.Comments.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, "first", thread[0].Body)
	assert.Equal(t, domain.RoleClient, thread[0].AuthorRole)
	assert.Equal(t, "second", thread[1].Body)
	assert.Equal(t, domain.RoleAdmin, thread[1].AuthorRole)

	empty, err := store.Comments.ListByTicket(ctx, 9999)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCommentsRejectUnknownTicket(t *testing.T) {
	store := newTestStore(t)
	owner := createUser(t, store, "fk@example.com", domain.RoleClient)

	err := store.Comments.Create(context.Background(), &domain.Comment{TicketID: 42, UserID: owner.ID, Body: "x"})
	assert.Error(t, err)
}

func TestParseTimeAcceptsLegacyLayouts(t *testing.T) {
	want := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, want, parseTime("2023-01-02T03:04:05"))
	assert.Equal(t, want, parseTime("2023-01-02 03:04:05"))
	assert.Equal(t, want, parseTime(formatTime(want)))
	assert.True(t, parseTime("garbage").IsZero())
}
