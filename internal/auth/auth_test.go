package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 15)

	token, expiresAt, err := tm.GenerateToken("scheduler-ui")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, time.Minute)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "scheduler-ui", claims.ClientID)
	assert.Equal(t, "scheduler-ui", claims.Subject)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", 15).GenerateToken("client")
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", 15).ParseToken(token)
	assert.Error(t, err)
}

func TestTokenRejectsGarbage(t *testing.T) {
	_, err := NewTokenManager("secret", 15).ParseToken("not-a-token")
	assert.Error(t, err)
}

func TestAPIKeyHashAndVerify(t *testing.T) {
	hash, err := HashAPIKey("super-secret-key")
	require.NoError(t, err)

	assert.NoError(t, VerifyAPIKey(hash, "super-secret-key"))
	assert.Error(t, VerifyAPIKey(hash, "wrong-key"))
}
