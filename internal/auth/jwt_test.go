package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("secret")

	token, err := GenerateToken(secret, "jo@x.com", "Jo Doe", time.Hour)
	require.NoError(t, err)

	identity, err := VerifyToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "jo@x.com", identity.Email)
	assert.Equal(t, "Jo Doe", identity.Name)
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken([]byte("secret"), "jo@x.com", "Jo", time.Hour)
	require.NoError(t, err)

	_, err = VerifyToken([]byte("other"), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken([]byte("secret"), "jo@x.com", "Jo", -time.Minute)
	require.NoError(t, err)

	_, err = VerifyToken([]byte("secret"), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	_, err := VerifyToken([]byte("secret"), "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
