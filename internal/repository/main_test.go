package repository

import (
	"context"
	"testing"

	"agora/internal/models"
	"agora/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.NewDB(t)
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

var (
	createUser  = testutil.CreateUser
	createTheme = testutil.CreateTheme
	createPost  = testutil.CreatePost
	baseTime    = testutil.BaseTime
)

func follow(t *testing.T, db *gorm.DB, a, b *models.User) {
	t.Helper()
	require.NoError(t, NewFollowRepository(db).Follow(context.Background(), a.ID, b.ID))
}
