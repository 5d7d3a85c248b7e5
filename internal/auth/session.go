package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// ErrSessionNotFound is returned for unknown or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore maps opaque session tokens to user ids.
type SessionStore interface {
	Create(ctx context.Context, userID int64) (domain.Session, error)
	Get(ctx context.Context, id string) (domain.Session, error)
	// Delete removes the session. Unknown ids are not an error.
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// Sweeper is implemented by stores that purge expired sessions on demand.
type Sweeper interface {
	Sweep(ctx context.Context) int
}

type memorySessionStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]domain.Session
}

// NewMemorySessionStore keeps sessions in process memory.
func NewMemorySessionStore(ttl time.Duration) SessionStore {
	return &memorySessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]domain.Session),
	}
}

func (s *memorySessionStore) Create(_ context.Context, userID int64) (domain.Session, error) {
	now := s.now()
	session := domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
	}
	if s.ttl > 0 {
		session.ExpiresAt = now.Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now)
	s.sessions[session.ID] = session
	return session, nil
}

func (s *memorySessionStore) Get(_ context.Context, id string) (domain.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok || session.Expired(s.now()) {
		return domain.Session{}, ErrSessionNotFound
	}
	return session, nil
}

func (s *memorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *memorySessionStore) Ping(context.Context) error {
	return nil
}

// Sweep drops expired sessions and reports how many were removed.
func (s *memorySessionStore) Sweep(context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.now())
}

func (s *memorySessionStore) sweepLocked(now time.Time) int {
	removed := 0
	for id, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
