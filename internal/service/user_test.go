package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkovalev/accounts-api/pkg/hash"
)

func TestUpdateUser_NameAndPassword(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.Register(ctx, "John", "john@x.com", "Abc123xx")
	require.NoError(t, err)

	name := "Johnny"
	password := "NewPass99"
	user, err := env.svc.UpdateUser(ctx, res.User.ID, UserUpdate{Name: &name, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, "Johnny", user.Name)
	assert.True(t, hash.CheckPassword(user.PasswordHash, "NewPass99"))

	// Email stays untouched by profile updates.
	assert.Equal(t, "john@x.com", user.Email)

	_, err = env.svc.Login(ctx, "john@x.com", "NewPass99")
	require.NoError(t, err)
}

func TestUpdateUser_Missing(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	name := "Nobody"
	_, err := env.svc.UpdateUser(context.Background(), 9999, UserUpdate{Name: &name})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSetUserActive_Toggle(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.Register(ctx, "John", "john@x.com", "Abc123xx")
	require.NoError(t, err)

	user, err := env.svc.SetUserActive(ctx, res.User.ID, false)
	require.NoError(t, err)
	assert.False(t, user.IsActive)

	user, err = env.svc.SetUserActive(ctx, res.User.ID, true)
	require.NoError(t, err)
	assert.True(t, user.IsActive)

	_, err = env.svc.Login(ctx, "john@x.com", "Abc123xx")
	require.NoError(t, err)
}

func TestDeleteUser(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.Register(ctx, "John", "john@x.com", "Abc123xx")
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteUser(ctx, res.User.ID))

	err = env.svc.DeleteUser(ctx, res.User.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestListUsers(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Register(ctx, "A", "a@x.com", "Abc123xx")
	require.NoError(t, err)
	_, err = env.svc.Register(ctx, "B", "b@x.com", "Abc123xx")
	require.NoError(t, err)

	users, err := env.svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
