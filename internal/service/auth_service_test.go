package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-stock-autotrader/internal/entity"
)

func (f *fixture) authService(limit int) AuthService {
	return NewAuthService(AuthConfig{SessionTimeout: time.Hour, RateLimitPerHour: limit}, f.users, f.activity, f.log)
}

func TestAuthService_EnsureAdminIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	auth := f.authService(100)

	require.NoError(t, auth.EnsureAdmin(ctx, "admin", "admin123!"))
	first, err := f.users.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.NotEmpty(t, first.APIKey)
	assert.NotEqual(t, "admin123!", first.PasswordHash)

	require.NoError(t, auth.EnsureAdmin(ctx, "admin", "other-password"))
	second, err := f.users.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, first.APIKey, second.APIKey)
}

func TestAuthService_LoginAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	auth := f.authService(100)
	require.NoError(t, auth.EnsureAdmin(ctx, "admin", "admin123!"))

	_, _, err := auth.Login(ctx, "admin", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = auth.Login(ctx, "nobody", "admin123!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	user, session, err := auth.Login(ctx, "admin", "admin123!")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "admin", session.Username)

	byKey, err := auth.Authenticate(ctx, user.APIKey, "")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byKey.ID)

	bySession, err := auth.Authenticate(ctx, "", session.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, bySession.ID)

	_, err = auth.Authenticate(ctx, "not-a-key", "")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	auth.Logout(session.ID)
	_, err = auth.Authenticate(ctx, "", session.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthService_Register(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	auth := f.authService(100)

	_, err := auth.Register(ctx, "trader", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	user, err := auth.Register(ctx, "trader", "long-enough")
	require.NoError(t, err)
	assert.NotEmpty(t, user.APIKey)

	_, err = auth.Register(ctx, "trader", "long-enough")
	assert.ErrorIs(t, err, ErrUserExists)

	_, _, err = auth.Login(ctx, "trader", "long-enough")
	assert.NoError(t, err)
}

func TestAuthService_AllowLimitsPerUser(t *testing.T) {
	f := newFixture(t)
	auth := f.authService(3)

	for i := 0; i < 3; i++ {
		assert.True(t, auth.Allow("alice"), "request %d", i+1)
	}
	assert.False(t, auth.Allow("alice"))
	assert.True(t, auth.Allow("bob"))
}

func TestAuthService_SessionOfDeletedUserIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	auth := f.authService(100)

	user, err := auth.Register(ctx, "trader", "long-enough")
	require.NoError(t, err)
	_, session, err := auth.Login(ctx, "trader", "long-enough")
	require.NoError(t, err)

	require.NoError(t, f.db.Delete(&entity.User{}, user.ID).Error)

	_, err = auth.Authenticate(ctx, "", session.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, found := auth.(*authService).sessions.Get(session.ID)
	assert.False(t, found, "session should be dropped")
}

func TestAuthService_AllowRenewsLimiterExpiry(t *testing.T) {
	f := newFixture(t)
	auth := f.authService(100).(*authService)

	require.True(t, auth.Allow("alice"))
	v, first, ok := auth.limiters.GetWithExpiration("alice")
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)
	require.True(t, auth.Allow("alice"))
	w, second, ok := auth.limiters.GetWithExpiration("alice")
	require.True(t, ok)

	assert.Same(t, v, w, "limiter state must survive renewal")
	assert.True(t, second.After(first), "expiry should slide on each request")
}
