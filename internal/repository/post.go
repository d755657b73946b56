package repository

import (
	"context"
	"errors"
	"time"

	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/search"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FeedQuery selects a page of posts. Every query passes through VisibleTo.
type FeedQuery struct {
	ViewerID uint
	// FollowingOnly restricts owners to users the viewer follows.
	FollowingOnly bool
	// Search, when non-nil, applies the post search predicate with this needle.
	Search *string
	// OwnerID restricts to a single author (profile timelines).
	OwnerID uint
	Limit   int
	Offset  int
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error)
	ListFeed(ctx context.Context, q FeedQuery) ([]*models.Post, error)
	GetOrigins(ctx context.Context, ids []uint) ([]*models.Post, error)
	VisibleIDs(ctx context.Context, viewerID uint, ids []uint) ([]uint, error)
	ListLikers(ctx context.Context, postIDs []uint) (map[uint][]models.UserSummary, error)
	ListShares(ctx context.Context, viewerID uint, originIDs []uint) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
	CountLikes(ctx context.Context, postID uint) (int64, error)
}

type postRepository struct {
	db     *gorm.DB
	logger *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, logger: observability.NewRepoLogger("posts")}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		r.logger.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.logger.LogCreate(ctx, map[string]interface{}{"post_id": post.ID, "user_id": post.UserID})
	return nil
}

// GetByID loads an active post by an active owner, with counts and the viewer's
// liked flag. Visibility is not checked here.
func (r *postRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	var post models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), viewerID).
		Scopes(ActiveOwner).
		Preload("User").
		Preload("Theme").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// ListFeed returns visible posts by active owners newest first, ties broken by id.
func (r *postRepository) ListFeed(ctx context.Context, q FeedQuery) ([]*models.Post, error) {
	db := r.applyPostDetails(r.db.WithContext(ctx), q.ViewerID).
		Scopes(VisibleTo(q.ViewerID), ActiveOwner)

	if q.FollowingOnly {
		db = db.Where("posts.user_id IN (SELECT followee_id FROM follows WHERE follower_id = ?)", q.ViewerID)
	}
	if q.Search != nil {
		db = db.Scopes(PostSearch(*q.Search))
	}
	if q.OwnerID != 0 {
		db = db.Where("posts.user_id = ?", q.OwnerID)
	}

	var posts []*models.Post
	err := db.
		Preload("User").
		Preload("Theme").
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Scopes(paginate(q.Limit, q.Offset)).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// GetOrigins loads posts by id including soft-deleted rows, with their owner and
// theme resolved one level.
func (r *postRepository) GetOrigins(ctx context.Context, ids []uint) ([]*models.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	unscoped := func(db *gorm.DB) *gorm.DB { return db.Unscoped() }

	var posts []*models.Post
	err := r.db.WithContext(ctx).Unscoped().
		Preload("User", unscoped).
		Preload("Theme", unscoped).
		Where("posts.id IN ?", ids).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ListLikers groups the active users with a live like by post id, earliest like first.
func (r *postRepository) ListLikers(ctx context.Context, postIDs []uint) (map[uint][]models.UserSummary, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var rows []struct {
		PostID    uint
		ID        uint
		FirstName string
		LastName  string
		Handle    string
		Avatar    string
		CreatedAt time.Time
	}
	err := r.db.WithContext(ctx).Table("likes").
		Select("likes.post_id, users.id, users.first_name, users.last_name, users.handle, users.avatar, users.created_at").
		Joins("JOIN users ON users.id = likes.user_id AND users.deleted_at IS NULL").
		Where("likes.post_id IN ? AND likes.deleted_at IS NULL", postIDs).
		Order("likes.created_at ASC").
		Order("likes.id ASC").
		Scan(&rows).Error
	if err != nil {
		r.logger.LogError(ctx, err, "list_likers")
		return nil, models.NewInternalError(err)
	}

	likers := make(map[uint][]models.UserSummary, len(postIDs))
	for _, row := range rows {
		likers[row.PostID] = append(likers[row.PostID], models.UserSummary{
			ID:        row.ID,
			FirstName: row.FirstName,
			LastName:  row.LastName,
			Handle:    row.Handle,
			Avatar:    row.Avatar,
			CreatedAt: row.CreatedAt,
		})
	}
	return likers, nil
}

// ListShares returns the posts sharing any of originIDs that the viewer can see,
// newest first.
func (r *postRepository) ListShares(ctx context.Context, viewerID uint, originIDs []uint) ([]*models.Post, error) {
	if len(originIDs) == 0 {
		return nil, nil
	}
	var shares []*models.Post
	err := r.db.WithContext(ctx).
		Scopes(VisibleTo(viewerID), ActiveOwner).
		Preload("User").
		Preload("Theme").
		Where("posts.shared_post_id IN ?", originIDs).
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Find(&shares).Error
	if err != nil {
		r.logger.LogError(ctx, err, "list_shares")
		return nil, models.NewInternalError(err)
	}
	return shares, nil
}

// VisibleIDs returns the subset of ids that are active and visible to the viewer.
func (r *postRepository) VisibleIDs(ctx context.Context, viewerID uint, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var visible []uint
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Scopes(VisibleTo(viewerID)).
		Where("posts.id IN ?", ids).
		Pluck("posts.id", &visible).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return visible, nil
}

// applyPostDetails adds subqueries to fetch counts and liked status in a single query.
// Only active likes and comments are counted.
func (r *postRepository) applyPostDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	return db.Model(&models.Post{}).Select("posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) AS comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id AND likes.deleted_at IS NULL) AS likes_count, " +
		"EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ? AND likes.deleted_at IS NULL) AS liked",
		viewerID)
}

// Update saves editable fields. The owner and the share reference never change.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).
		Model(post).
		Select("title", "content", "plain_text", "cover_image", "is_public", "theme_id", "updated_at").
		Updates(post).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	r.logger.LogDelete(ctx, map[string]interface{}{"post_id": id})
	return nil
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Like restores a previously removed like or inserts a new one.
func (r *postRepository) Like(ctx context.Context, userID, postID uint) error {
	db := r.db.WithContext(ctx)

	res := db.Unscoped().Model(&models.Like{}).
		Where("user_id = ? AND post_id = ? AND deleted_at IS NOT NULL", userID, postID).
		Updates(map[string]interface{}{"deleted_at": nil, "updated_at": time.Now()})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
		DoNothing: true,
	}).Create(&models.Like{UserID: userID, PostID: postID}).Error
	if err != nil && !isUniqueViolation(err) {
		return models.NewInternalError(err)
	}
	return nil
}

// Unlike soft-deletes the like.
func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) CountLikes(ctx context.Context, postID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// ActiveOwner drops posts whose author has been removed.
func ActiveOwner(db *gorm.DB) *gorm.DB {
	return db.Where("EXISTS (SELECT 1 FROM users WHERE users.id = posts.user_id AND users.deleted_at IS NULL)")
}

// PostSearch matches a needle against title, plain text, theme name and owner
// handle. An empty needle matches nothing.
func PostSearch(q string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		needle := search.Normalize(q)
		if needle == "" {
			return db.Where("1 = 0")
		}
		pattern := search.LikePattern(needle)
		return db.Where(`(LOWER(posts.title) LIKE ? ESCAPE '\'
			OR LOWER(posts.plain_text) LIKE ? ESCAPE '\'
			OR EXISTS (SELECT 1 FROM themes WHERE themes.id = posts.theme_id AND LOWER(themes.name) LIKE ? ESCAPE '\')
			OR EXISTS (SELECT 1 FROM users WHERE users.id = posts.user_id AND users.deleted_at IS NULL AND LOWER(users.handle) LIKE ? ESCAPE '\'))`,
			pattern, pattern, pattern, pattern)
	}
}
