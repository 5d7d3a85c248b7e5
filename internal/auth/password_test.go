package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "secret1", hash)
	require.True(t, strings.HasPrefix(hash, "$2a$"))

	require.NoError(t, ComparePassword(hash, "secret1"))
	require.ErrorIs(t, ComparePassword(hash, "secret2"), ErrPasswordMismatch)
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	first, err := HashPassword("same", bcrypt.MinCost)
	require.NoError(t, err)
	second, err := HashPassword("same", bcrypt.MinCost)
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.NoError(t, ComparePassword(first, "same"))
	require.NoError(t, ComparePassword(second, "same"))
}

func TestHashPassword_OutOfRangeCost(t *testing.T) {
	hash, err := HashPassword("pw", 0)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	require.Equal(t, bcrypt.DefaultCost, cost)
}

func TestComparePassword_MalformedHash(t *testing.T) {
	err := ComparePassword("not-a-hash", "pw")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrPasswordMismatch)
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", MaxPasswordBytes+1), bcrypt.MinCost)
	require.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = HashPassword(strings.Repeat("a", MaxPasswordBytes), bcrypt.MinCost)
	require.NoError(t, err)

	// Length is counted in bytes: 25 three-byte runes exceed the limit.
	require.True(t, PasswordTooLong(strings.Repeat("€", 25)))
}

func TestIsSupportedHash(t *testing.T) {
	hash, err := HashPassword("pw", bcrypt.MinCost)
	require.NoError(t, err)
	require.True(t, IsSupportedHash(hash))
	require.False(t, IsSupportedHash("pbkdf2:sha256:260000$salt$abcdef"))
	require.False(t, IsSupportedHash(""))
}
