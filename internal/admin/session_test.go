package admin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raid-scout/backend/pkg/apperr"
	"github.com/raid-scout/backend/pkg/utils"
)

const testPassword = "tres-secret"

func newTestAuthority(t *testing.T) (*Authority, *time.Time) {
	t.Helper()
	hash, err := utils.HashPassword(testPassword)
	require.NoError(t, err)

	now := time.Now()
	a := NewAuthority(NewMemorySessionStore(), hash, "test-secret", 2*time.Hour, 30*time.Minute, nil)
	a.now = func() time.Time { return now }
	return a, &now
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestAuthority(t)

	t.Run("wrong password", func(t *testing.T) {
		_, err := a.Login(ctx, "mauvais")
		require.Error(t, err)
		assert.Equal(t, apperr.CodeUnauthorized, apperr.From(err).Code)
	})

	t.Run("empty password", func(t *testing.T) {
		_, err := a.Login(ctx, "")
		require.Error(t, err)
		assert.Equal(t, apperr.CodeUnauthorized, apperr.From(err).Code)
	})

	t.Run("correct password issues a validatable token", func(t *testing.T) {
		token, err := a.Login(ctx, testPassword)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		s, err := a.Validate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, s.IssuedAt, s.LastActiveAt)
	})
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("missing token is unauthorized", func(t *testing.T) {
		a, _ := newTestAuthority(t)
		_, err := a.Validate(ctx, "")
		require.Error(t, err)
		assert.Equal(t, apperr.CodeUnauthorized, apperr.From(err).Code)
	})

	t.Run("garbage token is forbidden", func(t *testing.T) {
		a, _ := newTestAuthority(t)
		_, err := a.Validate(ctx, "pas.un.jwt")
		require.Error(t, err)
		assert.Equal(t, apperr.CodeForbidden, apperr.From(err).Code)
	})

	t.Run("expired TTL is forbidden, not unauthorized", func(t *testing.T) {
		a, now := newTestAuthority(t)
		token, err := a.Login(ctx, testPassword)
		require.NoError(t, err)

		*now = now.Add(2*time.Hour + time.Minute)
		_, err = a.Validate(ctx, token)
		require.Error(t, err)
		assert.Equal(t, apperr.CodeForbidden, apperr.From(err).Code)
	})

	t.Run("inactivity timeout is forbidden", func(t *testing.T) {
		a, now := newTestAuthority(t)
		token, err := a.Login(ctx, testPassword)
		require.NoError(t, err)

		*now = now.Add(31 * time.Minute)
		_, err = a.Validate(ctx, token)
		require.Error(t, err)
		assert.Equal(t, apperr.CodeForbidden, apperr.From(err).Code)
	})

	t.Run("activity slides the inactivity window", func(t *testing.T) {
		a, now := newTestAuthority(t)
		token, err := a.Login(ctx, testPassword)
		require.NoError(t, err)

		// Touch every 20 minutes: never idle long enough to expire,
		// until the absolute TTL ends the session anyway.
		for i := 0; i < 5; i++ {
			*now = now.Add(20 * time.Minute)
			_, err = a.Validate(ctx, token)
			require.NoError(t, err)
		}
		*now = now.Add(25 * time.Minute) // past the 2h absolute TTL now
		_, err = a.Validate(ctx, token)
		require.Error(t, err)
		assert.Equal(t, apperr.CodeForbidden, apperr.From(err).Code)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestAuthority(t)

	token, err := a.Login(ctx, testPassword)
	require.NoError(t, err)

	require.NoError(t, a.Logout(ctx, token))
	_, err = a.Validate(ctx, token)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeForbidden, apperr.From(err).Code)

	// Idempotent: repeated and garbage logouts succeed.
	assert.NoError(t, a.Logout(ctx, token))
	assert.NoError(t, a.Logout(ctx, ""))
	assert.NoError(t, a.Logout(ctx, "pas.un.jwt"))
}
