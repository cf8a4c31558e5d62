package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mira-tracker/mira-backend/internal/auth/domain"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	issuer := NewTokenIssuer("secret")
	s := &domain.Session{ID: "sess-1", UserID: 7, Role: "ADMIN", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}

	raw, err := issuer.Issue(s)
	require.NoError(t, err)

	claims, err := issuer.Parse(raw, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.ID)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "ADMIN", claims.Role)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	s := &domain.Session{ID: "sess-1", UserID: 7, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	raw, err := NewTokenIssuer("secret").Issue(s)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewTokenIssuer("other").Parse(raw, now)
		assert.True(t, errors.Is(err, domain.ErrInvalidToken))
	})

	t.Run("expired", func(t *testing.T) {
		_, err := NewTokenIssuer("secret").Parse(raw, now.Add(2*time.Hour))
		assert.True(t, errors.Is(err, domain.ErrInvalidToken))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := NewTokenIssuer("secret").Parse("not-a-token", now)
		assert.True(t, errors.Is(err, domain.ErrInvalidToken))
	})
}
