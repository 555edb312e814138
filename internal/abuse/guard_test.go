package abuse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raid-scout/backend/pkg/apperr"
)

func testConfig() Config {
	return Config{
		RegistrationWindow:     5 * time.Minute,
		RegistrationMaxSuccess: 3,
		RegistrationMaxFailure: 5,
		LoginWindow:            5 * time.Minute,
		LoginMaxAttempts:       4,
	}
}

func TestLoginRateLimit(t *testing.T) {
	ctx := context.Background()
	guard := NewGuard(NewMemoryCounter(), testConfig(), nil)

	// Four failed attempts are admitted; the fifth is rejected even before
	// the password is looked at.
	for i := 0; i < 4; i++ {
		require.NoError(t, guard.AllowLogin(ctx, "10.0.0.1"))
		guard.RecordLoginAttempt(ctx, "10.0.0.1")
	}
	err := guard.AllowLogin(ctx, "10.0.0.1")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeRateLimitLogin, apperr.From(err).Code)

	// Another IP is unaffected.
	assert.NoError(t, guard.AllowLogin(ctx, "10.0.0.2"))
}

func TestRegistrationSuccessThreshold(t *testing.T) {
	ctx := context.Background()
	guard := NewGuard(NewMemoryCounter(), testConfig(), nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, guard.AllowRegistration(ctx, "10.0.0.1"))
		guard.RecordRegistrationSuccess(ctx, "10.0.0.1")
	}
	// Three successes are still within policy.
	require.NoError(t, guard.AllowRegistration(ctx, "10.0.0.1"))
	guard.RecordRegistrationSuccess(ctx, "10.0.0.1")

	err := guard.AllowRegistration(ctx, "10.0.0.1")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeRateLimit, apperr.From(err).Code)
}

func TestRegistrationFailureThreshold(t *testing.T) {
	ctx := context.Background()
	guard := NewGuard(NewMemoryCounter(), testConfig(), nil)

	for i := 0; i < 6; i++ {
		guard.RecordRegistrationFailure(ctx, "10.0.0.1")
	}
	err := guard.AllowRegistration(ctx, "10.0.0.1")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeRateLimit, apperr.From(err).Code)
}

func TestWindowExpiryResetsCounters(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := NewMemoryCounter()
	store.now = func() time.Time { return now }
	guard := NewGuard(store, testConfig(), nil)

	for i := 0; i < 4; i++ {
		guard.RecordLoginAttempt(ctx, "10.0.0.1")
	}
	require.Error(t, guard.AllowLogin(ctx, "10.0.0.1"))

	// The block lifts once the window closes.
	now = now.Add(6 * time.Minute)
	assert.NoError(t, guard.AllowLogin(ctx, "10.0.0.1"))
}

func TestMemoryCounter(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := NewMemoryCounter()
	store.now = func() time.Time { return now }

	n, err := store.Incr(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.Incr(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// The expiry is fixed by the first increment of the window.
	now = now.Add(61 * time.Second)
	n, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = store.Incr(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryCounterEvictsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := NewMemoryCounter()
	store.now = func() time.Time { return now }

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		_, err := store.Incr(ctx, "abuse:login:"+ip, time.Minute)
		require.NoError(t, err)
	}
	require.Len(t, store.entries, 3)

	// Past the windows and the sweep interval, the next increment reclaims
	// the dead entries instead of letting the map grow per distinct IP.
	now = now.Add(2 * time.Minute)
	_, err := store.Incr(ctx, "abuse:login:10.0.0.9", time.Minute)
	require.NoError(t, err)
	assert.Len(t, store.entries, 1)

	// A live window survives the sweep.
	_, err = store.Incr(ctx, "abuse:login:10.0.0.9", time.Minute)
	require.NoError(t, err)
	now = now.Add(90 * time.Second)
	_, err = store.Incr(ctx, "abuse:login:10.0.0.1", 5*time.Minute)
	require.NoError(t, err)
	now = now.Add(sweepInterval + time.Second)
	_, err = store.Incr(ctx, "abuse:login:10.0.0.2", time.Minute)
	require.NoError(t, err)
	_, ok := store.entries["abuse:login:10.0.0.1"]
	assert.True(t, ok, "unexpired entry must survive the sweep")
	_, ok = store.entries["abuse:login:10.0.0.9"]
	assert.False(t, ok, "expired entry must be reclaimed")
}
