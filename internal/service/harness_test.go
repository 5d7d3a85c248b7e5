package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/repository/sqlite"
)

type harness struct {
	store    repository.Store
	sessions auth.SessionStore
	identity *IdentityService
	tickets  *TicketService
	recorder *eventRecorder
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *eventRecorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	db, err := persistence.NewSQLite(ctx, ":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, persistence.MigrateSQLite(ctx, db.DB, zap.NewNop()))

	store := sqlite.NewStore(db.DB)
	sessions := auth.NewMemorySessionStore(time.Hour)
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	recorder := &eventRecorder{}
	for _, et := range []events.EventType{
		events.EventUserRegistered,
		events.EventTicketCreated,
		events.EventTicketStatusChanged,
		events.EventTicketCommentAdded,
	} {
		dispatcher.Subscribe(et, recorder.handle)
	}

	cfg := config.AuthConfig{
		BcryptCost:        bcrypt.MinCost,
		SeedAdminEmail:    "admin@local",
		SeedAdminName:     "Administrator",
		SeedAdminPassword: "admin123",
	}

	return &harness{
		store:    store,
		sessions: sessions,
		identity: NewIdentityService(cfg, IdentityDependencies{
			UserRepo:   store.Users,
			Sessions:   sessions,
			Dispatcher: dispatcher,
		}),
		tickets: NewTicketService(TicketDependencies{
			TicketRepo:  store.Tickets,
			CommentRepo: store.Comments,
			Taxonomy:    domain.DefaultTaxonomy(),
			Policy:      auth.Policy{},
			Dispatcher:  dispatcher,
		}),
		recorder: recorder,
	}
}

func (h *harness) register(t *testing.T, name, email string) *domain.User {
	t.Helper()
	user, err := h.identity.Register(context.Background(), name, email, "secret")
	require.NoError(t, err)
	return user
}

func (h *harness) admin(t *testing.T) *domain.User {
	t.Helper()
	ctx := context.Background()
	_, err := h.identity.EnsureSeedAdmin(ctx)
	require.NoError(t, err)
	admin, err := h.store.Users.GetByEmail(ctx, "admin@local")
	require.NoError(t, err)
	return admin
}

func (h *harness) openTicket(t *testing.T, owner *domain.User, title string) *domain.Ticket {
	t.Helper()
	ticket, err := h.tickets.CreateTicket(context.Background(), owner, TicketCreateInput{
		Title:       title,
		Description: "details",
		Department:  "Support",
		Subcategory: "Hardware",
	})
	require.NoError(t, err)
	return ticket
}
