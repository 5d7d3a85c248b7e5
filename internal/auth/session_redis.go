package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/helpdesk/internal/domain"
)

type redisSession struct {
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type redisSessionStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisSessionStore keeps sessions as expiring Redis keys.
func NewRedisSessionStore(client *redis.Client, prefix string, ttl time.Duration) SessionStore {
	return &redisSessionStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *redisSessionStore) key(id string) string {
	return s.prefix + id
}

func (s *redisSessionStore) Create(ctx context.Context, userID int64) (domain.Session, error) {
	now := time.Now().UTC()
	session := domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
	}
	if s.ttl > 0 {
		session.ExpiresAt = now.Add(s.ttl)
	}
	payload, err := json.Marshal(redisSession{
		UserID:    session.UserID,
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		return domain.Session{}, err
	}
	if err := s.client.Set(ctx, s.key(session.ID), payload, s.ttl).Err(); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func (s *redisSessionStore) Get(ctx context.Context, id string) (domain.Session, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Session{}, ErrSessionNotFound
		}
		return domain.Session{}, err
	}
	var stored redisSession
	if err := json.Unmarshal(raw, &stored); err != nil {
		return domain.Session{}, err
	}
	return domain.Session{
		ID:        id,
		UserID:    stored.UserID,
		CreatedAt: stored.CreatedAt,
		ExpiresAt: stored.ExpiresAt,
	}, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

func (s *redisSessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
