package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// CookieSigner wraps session ids in HS256-signed tokens so the cookie
// cannot be forged without the server secret.
type CookieSigner struct {
	secret []byte
}

// NewCookieSigner builds a signer keyed by the application secret.
func NewCookieSigner(secret string) *CookieSigner {
	return &CookieSigner{secret: []byte(secret)}
}

// CookieClaims describes the cookie payload.
type CookieClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Sign builds and signs a cookie value for the session.
func (cs *CookieSigner) Sign(sessionID string, expiresAt time.Time) (string, error) {
	claims := &CookieClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	if !expiresAt.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(cs.secret)
}

// Parse validates a cookie value and returns the session id inside it.
func (cs *CookieSigner) Parse(value string) (string, error) {
	parsed, err := jwt.ParseWithClaims(value, &CookieClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return cs.secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := parsed.Claims.(*CookieClaims)
	if !ok || !parsed.Valid || claims.SessionID == "" {
		return "", errors.New("invalid cookie claims")
	}
	return claims.SessionID, nil
}
