package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-at-least-32-chars!"

func TestTokenValidator_RoundTrip(t *testing.T) {
	t.Parallel()

	v := NewTokenValidator(testSecret, "anitrack")
	userID := uuid.New()

	token, err := v.Sign(userID, "viewer@example.com", time.Minute)
	require.NoError(t, err)

	identity, err := v.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, identity.UserID)
	assert.Equal(t, "viewer@example.com", identity.Email)
}

func TestTokenValidator_Expired(t *testing.T) {
	t.Parallel()

	v := NewTokenValidator(testSecret, "anitrack")

	token, err := v.Sign(uuid.New(), "viewer@example.com", -time.Minute)
	require.NoError(t, err)

	_, err = v.Validate(token)
	assert.Error(t, err)
}

func TestTokenValidator_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer := NewTokenValidator(testSecret, "anitrack")
	other := NewTokenValidator("another-secret-that-is-32-chars-long!!", "anitrack")

	token, err := issuer.Sign(uuid.New(), "viewer@example.com", time.Minute)
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestTokenValidator_WrongIssuer(t *testing.T) {
	t.Parallel()

	issuer := NewTokenValidator(testSecret, "someone-else")
	v := NewTokenValidator(testSecret, "anitrack")

	token, err := issuer.Sign(uuid.New(), "viewer@example.com", time.Minute)
	require.NoError(t, err)

	_, err = v.Validate(token)
	assert.Error(t, err)
}

func TestTokenValidator_Garbage(t *testing.T) {
	t.Parallel()

	v := NewTokenValidator(testSecret, "anitrack")

	_, err := v.Validate("")
	assert.Error(t, err)

	_, err = v.Validate("not-a-jwt")
	assert.Error(t, err)
}
