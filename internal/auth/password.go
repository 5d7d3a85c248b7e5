package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

var (
	// ErrPasswordMismatch is returned when a plaintext does not match a stored hash.
	ErrPasswordMismatch = errors.New("password does not match")
	// ErrPasswordTooLong is returned for passwords over MaxPasswordBytes.
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)

// PasswordTooLong reports whether password cannot be hashed.
func PasswordTooLong(password string) bool {
	return len(password) > MaxPasswordBytes
}

// HashPassword hashes a plaintext password with configured cost.
// Costs outside bcrypt's accepted range fall back to bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if PasswordTooLong(password) {
		return "", ErrPasswordTooLong
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}

// IsSupportedHash reports whether hashed is a bcrypt hash this package can verify.
func IsSupportedHash(hashed string) bool {
	_, err := bcrypt.Cost([]byte(hashed))
	return err == nil
}
