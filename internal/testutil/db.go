// Package testutil holds shared fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"agora/internal/database"
	"agora/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// BaseTime anchors fixture timestamps so ordering assertions are deterministic.
var BaseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// NewDB returns a migrated in-memory sqlite database. A single connection keeps
// every query on the same in-memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// NewRedis starts a miniredis server and returns a client for it.
func NewRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// CreateUser inserts an active user whose handle, names and email derive from handle.
func CreateUser(t *testing.T, db *gorm.DB, handle string) *models.User {
	t.Helper()
	u := &models.User{
		Handle:    handle,
		FirstName: "First" + handle,
		LastName:  "Last" + handle,
		Email:     handle + "@example.com",
		Password:  "x",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateTheme inserts a theme.
func CreateTheme(t *testing.T, db *gorm.DB, name string) *models.Theme {
	t.Helper()
	th := &models.Theme{Name: name}
	require.NoError(t, db.Create(th).Error)
	return th
}

// CreatePost inserts a post created offset minutes after BaseTime.
func CreatePost(t *testing.T, db *gorm.DB, owner *models.User, theme *models.Theme, public bool, offset int) *models.Post {
	t.Helper()
	p := &models.Post{
		Title:     fmt.Sprintf("post %d by %s", offset, owner.Handle),
		Content:   "<p>body</p>",
		IsPublic:  public,
		UserID:    owner.ID,
		ThemeID:   theme.ID,
		CreatedAt: BaseTime.Add(time.Duration(offset) * time.Minute),
	}
	require.NoError(t, db.Omit("User", "Theme").Create(p).Error)
	return p
}

// Follow inserts the edge a -> b.
func Follow(t *testing.T, db *gorm.DB, a, b *models.User) {
	t.Helper()
	require.NoError(t, db.Create(&models.Follow{FollowerID: a.ID, FolloweeID: b.ID}).Error)
}

// Unfollow removes the edge a -> b.
func Unfollow(t *testing.T, db *gorm.DB, a, b *models.User) {
	t.Helper()
	require.NoError(t, db.Where("follower_id = ? AND followee_id = ?", a.ID, b.ID).Delete(&models.Follow{}).Error)
}
