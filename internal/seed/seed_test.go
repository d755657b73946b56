package seed

import (
	"context"
	"testing"
	"time"

	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/testutil"
	"agora/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testPreset() Preset {
	return Preset{
		Name:            "test",
		Users:           8,
		PostsPerUser:    3,
		FollowRatio:     0.5,
		MutualRatio:     0.5,
		PrivateRatio:    0.3,
		ShareRatio:      0.3,
		LikeRatio:       0.3,
		CommentsPerPost: 1,
		MaxDays:         10,
		Themes:          []string{"General", "Travel"},
	}
}

func runSeed(t *testing.T, opts Options) Summary {
	t.Helper()
	db := testutil.NewDB(t)
	opts.HashCost = bcrypt.MinCost
	opts.Now = func() time.Time { return fixedNow }
	sum, err := NewSeeder(db, opts).Run(context.Background())
	require.NoError(t, err)
	return sum
}

func TestSeeder_Run(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	sum, err := NewSeeder(db, Options{
		Preset:   testPreset(),
		Seed:     42,
		HashCost: bcrypt.MinCost,
		Now:      func() time.Time { return fixedNow },
	}).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Themes)
	assert.Equal(t, 8, sum.Users)
	assert.Equal(t, 24, sum.Posts)

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 8)
	for _, u := range users {
		assert.NoError(t, validation.ValidateHandle(u.Handle), u.Handle)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(DefaultPassword)))
		assert.False(t, u.CreatedAt.After(fixedNow))
	}

	var postCount, shareCount, followCount, likeCount, commentCount int64
	require.NoError(t, db.Model(&models.Post{}).Where("shared_post_id IS NULL").Count(&postCount).Error)
	require.NoError(t, db.Model(&models.Post{}).Where("shared_post_id IS NOT NULL").Count(&shareCount).Error)
	require.NoError(t, db.Model(&models.Follow{}).Count(&followCount).Error)
	require.NoError(t, db.Model(&models.Like{}).Count(&likeCount).Error)
	require.NoError(t, db.Model(&models.Comment{}).Count(&commentCount).Error)
	assert.EqualValues(t, sum.Posts, postCount)
	assert.EqualValues(t, sum.Shares, shareCount)
	assert.EqualValues(t, sum.Follows, followCount)
	assert.EqualValues(t, sum.Likes, likeCount)
	assert.EqualValues(t, sum.Comments, commentCount)
}

func TestSeeder_SharesPointAtPublicOrigins(t *testing.T) {
	db := testutil.NewDB(t)
	p := testPreset()
	p.ShareRatio = 1
	_, err := NewSeeder(db, Options{Preset: p, Seed: 7, HashCost: bcrypt.MinCost}).Run(context.Background())
	require.NoError(t, err)

	var shares []models.Post
	require.NoError(t, db.Where("shared_post_id IS NOT NULL").Find(&shares).Error)
	require.NotEmpty(t, shares)
	for _, s := range shares {
		var origin models.Post
		require.NoError(t, db.First(&origin, *s.SharedPostID).Error)
		assert.True(t, origin.IsPublic)
		assert.Nil(t, origin.SharedPostID, "shares are flattened to their origin")
		assert.NotEqual(t, origin.UserID, s.UserID)
	}
}

func TestSeeder_EngagementOnlyOnPublicPosts(t *testing.T) {
	db := testutil.NewDB(t)
	p := testPreset()
	p.LikeRatio = 1
	p.PrivateRatio = 0.5
	_, err := NewSeeder(db, Options{Preset: p, Seed: 3, HashCost: bcrypt.MinCost}).Run(context.Background())
	require.NoError(t, err)

	var hidden int64
	require.NoError(t, db.Model(&models.Like{}).
		Joins("JOIN posts ON posts.id = likes.post_id").
		Where("posts.is_public = ?", false).
		Count(&hidden).Error)
	assert.Zero(t, hidden)
}

func TestSeeder_MutualRatioOneMakesEveryEdgeMutual(t *testing.T) {
	db := testutil.NewDB(t)
	p := testPreset()
	p.MutualRatio = 1
	_, err := NewSeeder(db, Options{Preset: p, Seed: 11, HashCost: bcrypt.MinCost}).Run(context.Background())
	require.NoError(t, err)

	follows := repository.NewFollowRepository(db)
	var edges []models.Follow
	require.NoError(t, db.Find(&edges).Error)
	require.NotEmpty(t, edges)
	for _, e := range edges {
		mutual, err := follows.IsMutualFollower(context.Background(), e.FollowerID, e.FolloweeID)
		require.NoError(t, err)
		assert.True(t, mutual, "%d -> %d", e.FollowerID, e.FolloweeID)
	}
}

func TestSeeder_PostsCarryPlainText(t *testing.T) {
	db := testutil.NewDB(t)
	_, err := NewSeeder(db, Options{Preset: testPreset(), Seed: 5, HashCost: bcrypt.MinCost}).Run(context.Background())
	require.NoError(t, err)

	var post models.Post
	require.NoError(t, db.Where("shared_post_id IS NULL").First(&post).Error)
	assert.Contains(t, post.Content, "<p>")
	assert.NotEmpty(t, post.PlainText)
	assert.NotContains(t, post.PlainText, "<p>")
}

func TestSeeder_CleanRemovesPreviousRun(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	opts := Options{Preset: testPreset(), HashCost: bcrypt.MinCost}
	_, err := NewSeeder(db, opts).Run(ctx)
	require.NoError(t, err)

	opts.Clean = true
	_, err = NewSeeder(db, opts).Run(ctx)
	require.NoError(t, err)

	var users int64
	require.NoError(t, db.Unscoped().Model(&models.User{}).Count(&users).Error)
	assert.EqualValues(t, 8, users)
}

func TestSeeder_RejectsInvalidPreset(t *testing.T) {
	db := testutil.NewDB(t)
	p := testPreset()
	p.FollowRatio = 2
	_, err := NewSeeder(db, Options{Preset: p}).Run(context.Background())
	assert.Error(t, err)
}

func TestSeeder_ZeroUsers(t *testing.T) {
	p := testPreset()
	p.Users = 0
	sum := runSeed(t, Options{Preset: p})
	assert.Equal(t, Summary{Themes: 2}, sum)
}

func TestHandleStem(t *testing.T) {
	assert.Equal(t, "maryann", handleStem("Mary-Ann"))
	assert.Equal(t, "user", handleStem("Ø"))
	assert.Len(t, handleStem("Bartholomewxxxxxxxx"), 12)
}
