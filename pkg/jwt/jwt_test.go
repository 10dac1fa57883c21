package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrincipal = "SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7"

func TestGenerateAndValidate(t *testing.T) {
	svc := NewService("test-secret", 15*time.Minute, 7*24*time.Hour)

	pair, err := svc.GenerateTokenPair(testPrincipal)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Greater(t, pair.ExpiresAt, time.Now().Unix())

	claims, err := svc.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, testPrincipal, claims.Principal)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	svc := NewService("secret-a", time.Minute, time.Hour)
	other := NewService("secret-b", time.Minute, time.Hour)

	pair, err := svc.GenerateTokenPair(testPrincipal)
	require.NoError(t, err)

	_, err = other.ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpired(t *testing.T) {
	svc := NewService("secret", -time.Minute, time.Hour)

	pair, err := svc.GenerateTokenPair(testPrincipal)
	require.NoError(t, err)

	_, err = svc.ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewService("secret", time.Minute, time.Hour)
	_, err := svc.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
