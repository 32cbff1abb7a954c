package user_test

import (
	"context"
	"testing"

	"lms-service/internal/testing/fakes"
	"lms-service/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService(t *testing.T) {
	ctx := context.Background()
	repo := fakes.NewUserRepository()
	svc := user.NewService(repo)

	t.Run("ListUsers on an empty store", func(t *testing.T) {
		users, err := svc.ListUsers(ctx)
		require.NoError(t, err)
		assert.NotNil(t, users)
		assert.Empty(t, users)
	})

	admin, err := repo.Create(ctx, &user.User{Username: "root", Email: "root@example.com", IsAdmin: true})
	require.NoError(t, err)
	alice, err := repo.Create(ctx, &user.User{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)

	t.Run("GetUser", func(t *testing.T) {
		u, err := svc.GetUser(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", u.Username)

		_, err = svc.GetUser(ctx, 0)
		assert.ErrorIs(t, err, user.ErrUserNotFound)
		_, err = svc.GetUser(ctx, 404)
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("ToggleAdmin flips the target", func(t *testing.T) {
		u, err := svc.ToggleAdmin(ctx, admin.ID, alice.ID)
		require.NoError(t, err)
		assert.True(t, u.IsAdmin)

		stored, err := repo.GetByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsAdmin)
	})

	t.Run("ToggleAdmin refuses self", func(t *testing.T) {
		u, err := svc.ToggleAdmin(ctx, admin.ID, admin.ID)
		assert.ErrorIs(t, err, user.ErrSelfToggle)
		require.NotNil(t, u)
		assert.True(t, u.IsAdmin)

		stored, err := repo.GetByID(ctx, admin.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsAdmin)
	})

	t.Run("ToggleAdmin on a missing user", func(t *testing.T) {
		_, err := svc.ToggleAdmin(ctx, admin.ID, 404)
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
}
