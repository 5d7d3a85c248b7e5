package auth

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/domain"
)

const (
	userKey    = "auth_user"
	sessionKey = "auth_session"
)

// UserResolver turns a session id into its user, or nil when unauthenticated.
type UserResolver interface {
	CurrentUser(ctx context.Context, sessionID string) (*domain.User, error)
}

// SessionMiddleware reads the signed session cookie and loads the caller.
// Requests without a valid cookie pass through anonymously.
type SessionMiddleware struct {
	signer     *CookieSigner
	users      UserResolver
	cookieName string
	secure     bool
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(signer *CookieSigner, users UserResolver, cookieName string, secure bool) *SessionMiddleware {
	return &SessionMiddleware{signer: signer, users: users, cookieName: cookieName, secure: secure}
}

// Handle resolves the current user for every request.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	raw := c.Cookies(m.cookieName)
	if raw == "" {
		return c.Next()
	}
	sessionID, err := m.signer.Parse(raw)
	if err != nil {
		m.ClearSession(c)
		return c.Next()
	}
	c.Locals(sessionKey, sessionID)

	user, err := m.users.CurrentUser(c.UserContext(), sessionID)
	if err != nil {
		return err
	}
	if user != nil {
		c.Locals(userKey, user)
	}
	return c.Next()
}

// SetSession writes the cookie for a freshly issued session.
func (m *SessionMiddleware) SetSession(c *fiber.Ctx, session domain.Session) error {
	value, err := m.signer.Sign(session.ID, session.ExpiresAt)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Locals(sessionKey, session.ID)
	return nil
}

// ClearSession expires the session cookie on the client.
func (m *SessionMiddleware) ClearSession(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// UserFromContext retrieves the authenticated user, if any.
func UserFromContext(c *fiber.Ctx) (*domain.User, bool) {
	user, ok := c.Locals(userKey).(*domain.User)
	return user, ok && user != nil
}

// SessionIDFromContext retrieves the session id carried by the request cookie.
func SessionIDFromContext(c *fiber.Ctx) string {
	id, _ := c.Locals(sessionKey).(string)
	return id
}
