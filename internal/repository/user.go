package repository

import (
	"context"
	"errors"

	"agora/internal/models"
	"agora/internal/search"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByHandle(ctx context.Context, handle string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, limit, offset int) ([]models.UserSummary, error)
	SuggestFollows(ctx context.Context, userID uint, limit int) ([]models.UserSummary, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByID returns an active user.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// GetByEmail returns nil, nil when no active user has the address.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

// GetByHandle returns nil, nil when no active user has the handle.
func (r *userRepository) GetByHandle(ctx context.Context, handle string) (*models.User, error) {
	return r.findOne(ctx, "handle = ?", handle)
}

func (r *userRepository) findOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Delete soft-deletes the user.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.User{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Search matches first name, last name, handle and "first last".
func (r *userRepository) Search(ctx context.Context, query string, limit, offset int) ([]models.UserSummary, error) {
	var users []models.UserSummary
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Scopes(UserSearch(query)).
		Order("users.first_name ASC").
		Order("users.id ASC").
		Scopes(paginate(limit, offset)).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// SuggestFollows returns active users that userID does not follow yet, excluding userID.
func (r *userRepository) SuggestFollows(ctx context.Context, userID uint, limit int) ([]models.UserSummary, error) {
	var users []models.UserSummary
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("users.id <> ?", userID).
		Where("users.id NOT IN (SELECT followee_id FROM follows WHERE follower_id = ?)", userID).
		Order("users.created_at DESC").
		Order("users.id DESC").
		Scopes(paginate(limit, 0)).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// UserSearch matches a needle against the user name fields. An empty needle matches nothing.
func UserSearch(q string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		needle := search.Normalize(q)
		if needle == "" {
			return db.Where("1 = 0")
		}
		pattern := search.LikePattern(needle)
		return db.Where(`(LOWER(users.first_name) LIKE ? ESCAPE '\'
			OR LOWER(users.last_name) LIKE ? ESCAPE '\'
			OR LOWER(users.handle) LIKE ? ESCAPE '\'
			OR LOWER(users.first_name || ' ' || users.last_name) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern, pattern)
	}
}
