package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken(testSecret, 42, "ana@example.com", 15)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)

	claims, err := VerifyToken(testSecret, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	tok, err := NewAccessToken(testSecret, 7, "x@example.com", 15)
	require.NoError(t, err)

	_, err = VerifyToken("other-secret", tok.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyTokenExpired(t *testing.T) {
	tok, err := NewAccessToken(testSecret, 7, "x@example.com", -1)
	require.NoError(t, err)

	_, err = VerifyToken(testSecret, tok.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyTokenGarbage(t *testing.T) {
	_, err := VerifyToken(testSecret, "not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRefreshSecretsAreNotInterchangeable(t *testing.T) {
	refresh, err := NewRefreshToken("refresh-secret", 9, "x@example.com", 7)
	require.NoError(t, err)

	// A refresh token must not pass as an access token.
	_, err = VerifyToken(testSecret, refresh.Raw)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	claims, err := VerifyToken("refresh-secret", refresh.Raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), claims.UserID)
}

func TestHashRefreshRaw(t *testing.T) {
	h1 := HashRefreshRaw("abc")
	h2 := HashRefreshRaw("abc")
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
	assert.NotEqual(t, h1, HashRefreshRaw("abd"))
}

func TestNewResetToken(t *testing.T) {
	a, err := NewResetToken()
	require.NoError(t, err)
	b, err := NewResetToken()
	require.NoError(t, err)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
