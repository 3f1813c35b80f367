package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalpath/vitalpath/internal/user/domain"
	"github.com/vitalpath/vitalpath/internal/user/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, dsn string) domain.Service {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.User{}))

	return New(Params{
		DB:   conn,
		Log:  zap.NewNop(),
		Repo: repository.Provide(),
	})
}

func TestEnsureUserCreatesOnFirstSighting(t *testing.T) {
	svc := newTestService(t, "file:user_create?mode=memory&cache=shared")

	user, err := svc.EnsureUser(context.Background(), domain.EnsureUserRequest{
		ID:          "user-1",
		Email:       "anna@example.com",
		DisplayName: "Anna",
	})
	require.NoError(t, err)
	assert.Equal(t, "anna@example.com", user.Email)
	assert.Equal(t, "Anna", user.DisplayName)
	assert.Equal(t, domain.TierFree, user.SubscriptionTier)
}

func TestEnsureUserKeepsProfileOnBareResight(t *testing.T) {
	svc := newTestService(t, "file:user_resight?mode=memory&cache=shared")
	ctx := context.Background()

	_, err := svc.EnsureUser(ctx, domain.EnsureUserRequest{
		ID:          "user-1",
		Email:       "anna@example.com",
		DisplayName: "Anna",
	})
	require.NoError(t, err)

	// Confirmation re-sights users with whatever the gateway returned, which
	// may be nothing at all. Stored profile data survives the bare call.
	user, err := svc.EnsureUser(ctx, domain.EnsureUserRequest{ID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, "anna@example.com", user.Email)
	assert.Equal(t, "Anna", user.DisplayName)
}

func TestEnsureUserMergesFreshProfileValues(t *testing.T) {
	svc := newTestService(t, "file:user_merge?mode=memory&cache=shared")
	ctx := context.Background()

	_, err := svc.EnsureUser(ctx, domain.EnsureUserRequest{ID: "user-1", Email: "anna@example.com"})
	require.NoError(t, err)

	user, err := svc.EnsureUser(ctx, domain.EnsureUserRequest{
		ID:          "user-1",
		Email:       "anna.new@example.com",
		DisplayName: "Anna",
	})
	require.NoError(t, err)
	assert.Equal(t, "anna.new@example.com", user.Email)
	assert.Equal(t, "Anna", user.DisplayName)
}

func TestEnsureUserRequiresID(t *testing.T) {
	svc := newTestService(t, "file:user_noid?mode=memory&cache=shared")

	_, err := svc.EnsureUser(context.Background(), domain.EnsureUserRequest{Email: "anna@example.com"})
	assert.ErrorIs(t, err, domain.ErrInvalidUser)
}
