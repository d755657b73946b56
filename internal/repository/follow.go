package repository

import (
	"context"

	"agora/internal/models"
	"agora/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// mutualFollowQuery finds the edge pair (viewer -> owner, owner -> viewer) in one
// self-join and requires both endpoints to be active.
const mutualFollowQuery = `SELECT COUNT(*) FROM follows f1
JOIN follows f2 ON f1.follower_id = f2.followee_id AND f1.followee_id = f2.follower_id
JOIN users u1 ON u1.id = f1.follower_id AND u1.deleted_at IS NULL
JOIN users u2 ON u2.id = f1.followee_id AND u2.deleted_at IS NULL
WHERE f1.follower_id = ? AND f1.followee_id = ?`

// mutualFollowExistsSQL is the correlated form of mutualFollowQuery, evaluated
// against posts.user_id. It takes the viewer id as its single argument.
const mutualFollowExistsSQL = `EXISTS (SELECT 1 FROM follows f1
JOIN follows f2 ON f1.follower_id = f2.followee_id AND f1.followee_id = f2.follower_id
JOIN users u1 ON u1.id = f1.follower_id AND u1.deleted_at IS NULL
JOIN users u2 ON u2.id = f1.followee_id AND u2.deleted_at IS NULL
WHERE f1.follower_id = ? AND f1.followee_id = posts.user_id AND f1.followee_id <> f1.follower_id)`

// FollowRepository stores directed follow edges and answers mutual-follow queries.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followeeID uint) error
	Unfollow(ctx context.Context, followerID, followeeID uint) error
	IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error)
	IsMutualFollower(ctx context.Context, viewerID, ownerID uint) (bool, error)
	GetFollowerIDs(ctx context.Context, userID uint, limit int) ([]uint, error)
	GetFollowingIDs(ctx context.Context, userID uint) ([]uint, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
}

type followRepository struct {
	db     *gorm.DB
	logger *observability.RepoLogger
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db, logger: observability.NewRepoLogger("follows")}
}

// Follow inserts the edge; following twice is a no-op.
func (r *followRepository) Follow(ctx context.Context, followerID, followeeID uint) error {
	edge := &models.Follow{FollowerID: followerID, FolloweeID: followeeID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "follower_id"}, {Name: "followee_id"}},
			DoNothing: true,
		}).
		Create(edge).Error
	if err != nil {
		if models.ErrorCode(err) != "" {
			return err
		}
		r.logger.LogError(ctx, err, "follow")
		return models.NewInternalError(err)
	}
	r.logger.LogCreate(ctx, map[string]interface{}{"follower_id": followerID, "followee_id": followeeID})
	return nil
}

// Unfollow removes the edge. Edges carry no history so the row is deleted outright.
func (r *followRepository) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	r.logger.LogDelete(ctx, map[string]interface{}{"follower_id": followerID, "followee_id": followeeID})
	return nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// IsMutualFollower is true iff both edges exist, both users are active and the ids differ.
func (r *followRepository) IsMutualFollower(ctx context.Context, viewerID, ownerID uint) (bool, error) {
	if viewerID == 0 || ownerID == 0 || viewerID == ownerID {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Raw(mutualFollowQuery, viewerID, ownerID).Scan(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// GetFollowerIDs lists active users following userID. limit <= 0 means uncapped.
func (r *followRepository) GetFollowerIDs(ctx context.Context, userID uint, limit int) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Table("follows").
		Joins("JOIN users ON users.id = follows.follower_id AND users.deleted_at IS NULL").
		Where("follows.followee_id = ? AND follows.follower_id <> ?", userID, userID).
		Order("follows.created_at DESC").
		Scopes(paginate(limit, 0)).
		Pluck("follows.follower_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

// GetFollowingIDs lists active users that userID follows.
func (r *followRepository) GetFollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Table("follows").
		Joins("JOIN users ON users.id = follows.followee_id AND users.deleted_at IS NULL").
		Where("follows.follower_id = ?", userID).
		Pluck("follows.followee_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Joins("JOIN users ON users.id = follows.follower_id AND users.deleted_at IS NULL").
		Where("follows.followee_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *followRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Joins("JOIN users ON users.id = follows.followee_id AND users.deleted_at IS NULL").
		Where("follows.follower_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// VisibleTo restricts a posts query to rows the viewer may see: public posts, the
// viewer's own posts, and posts of mutual followers. Viewer 0 is anonymous.
func VisibleTo(viewerID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if viewerID == 0 {
			return db.Where("posts.is_public = ?", true)
		}
		return db.Where("(posts.is_public = ? OR posts.user_id = ? OR "+mutualFollowExistsSQL+")",
			true, viewerID, viewerID)
	}
}
