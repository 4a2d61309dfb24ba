package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelworks/docvault/backend/internal/models"
)

func TestTokenServiceRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret")
	user := &models.User{UUID: "uuid-1", Username: "alice", Role: models.RoleAdmin}

	token, err := svc.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "uuid-1", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestTokenServiceRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-a")
	verifier := NewTokenService("secret-b")

	token, err := issuer.Issue(&models.User{UUID: "uuid-1", Username: "alice", Role: models.RoleUser})
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestTokenServiceExpiry(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svc := NewTokenService("test-secret").WithClock(func() time.Time { return issuedAt })

	token, err := svc.Issue(&models.User{UUID: "uuid-1", Username: "alice", Role: models.RoleUser})
	require.NoError(t, err)

	t.Run("valid within ttl", func(t *testing.T) {
		svc.WithClock(func() time.Time { return issuedAt.Add(23 * time.Hour) })
		_, err := svc.Verify(token)
		assert.NoError(t, err)
	})

	t.Run("rejected after ttl", func(t *testing.T) {
		svc.WithClock(func() time.Time { return issuedAt.Add(25 * time.Hour) })
		_, err := svc.Verify(token)
		assert.ErrorIs(t, err, ErrAuthentication)
	})
}

func TestTokenServiceGarbage(t *testing.T) {
	svc := NewTokenService("test-secret")
	_, err := svc.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrAuthentication)
}
