package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword(testPassword, 4)
	require.NoError(t, err)
	assert.NotEqual(t, testPassword, hash)

	assert.NoError(t, CheckPassword(testPassword, hash))
	assert.ErrorIs(t, CheckPassword("wrong-password-here", hash), ErrInvalidPassword)
}

func TestHashPasswordLength(t *testing.T) {
	_, err := HashPassword("short", 4)
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = HashPassword(strings.Repeat("a", 73), 4)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestNewAPIToken(t *testing.T) {
	first, err := NewAPIToken()
	require.NoError(t, err)
	second, err := NewAPIToken()
	require.NoError(t, err)

	assert.Len(t, first.Plaintext, 64)
	assert.Equal(t, HashToken(first.Plaintext), first.Hash)
	assert.NotEqual(t, first.Plaintext, second.Plaintext)
	assert.NotEqual(t, first.Plaintext, first.Hash)
}
