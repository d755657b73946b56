package service

import (
	"context"
	"testing"

	"agora/internal/models"
	"agora/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_SearchUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewUserService(env.users, env.follows, 10)
	testutil.CreateUser(t, env.db, "marie")
	testutil.CreateUser(t, env.db, "pierre")

	got, err := svc.SearchUsers(ctx, "  ", 1)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got, err = svc.SearchUsers(ctx, "MAR", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "marie", got[0].Handle)

	got, err = svc.SearchUsers(ctx, "firstmarie lastmarie", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1, "full names match across the space")
}

func TestUserService_GetProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewUserService(env.users, env.follows, 10)
	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")
	testutil.Follow(t, env.db, alice, bob)

	p, err := svc.GetProfile(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.FollowersCount)
	assert.Equal(t, int64(0), p.FollowingCount)
	assert.True(t, p.IsFollowing)
	assert.False(t, p.FollowsYou)
	assert.False(t, p.IsMutual)

	testutil.Follow(t, env.db, bob, alice)
	p, err = svc.GetProfile(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, p.IsMutual)

	p, err = svc.GetProfile(ctx, 0, bob.ID)
	require.NoError(t, err)
	assert.False(t, p.IsFollowing)

	_, err = svc.GetProfile(ctx, 0, 999)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestFollowService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewFollowService(env.follows, env.users, 5)
	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")

	assert.Equal(t, models.CodeValidation, models.ErrorCode(svc.Follow(ctx, alice.ID, alice.ID)))
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(svc.Follow(ctx, alice.ID, 999)))

	require.NoError(t, svc.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, svc.Follow(ctx, alice.ID, bob.ID), "following twice is a no-op")

	mutual, err := svc.IsMutual(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, mutual)

	require.NoError(t, svc.Follow(ctx, bob.ID, alice.ID))
	mutual, err = svc.IsMutual(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, mutual)

	ids, err := svc.FollowerIDs(ctx, bob.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{alice.ID}, ids)

	require.NoError(t, svc.Unfollow(ctx, alice.ID, bob.ID))
	mutual, err = svc.IsMutual(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, mutual)

	ids, err = svc.FollowerIDs(ctx, bob.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{}, ids)
}
