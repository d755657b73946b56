package repository

import (
	"context"
	"errors"
	"time"

	"agora/internal/models"

	"gorm.io/gorm"
)

// TokenRepository persists hashed bearer tokens.
type TokenRepository interface {
	Create(ctx context.Context, token *models.AccessToken) error
	FindByHash(ctx context.Context, hash string) (*models.AccessToken, error)
	Delete(ctx context.Context, id uint, hash string) (bool, error)
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
	Touch(ctx context.Context, id uint, at time.Time) error
}

type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, token *models.AccessToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// FindByHash returns nil, nil for unknown hashes.
func (r *tokenRepository) FindByHash(ctx context.Context, hash string) (*models.AccessToken, error) {
	var token models.AccessToken
	if err := r.db.WithContext(ctx).Where("token_hash = ?", hash).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &token, nil
}

// Delete removes the token row and reports whether one existed.
func (r *tokenRepository) Delete(ctx context.Context, id uint, hash string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND token_hash = ?", id, hash).
		Delete(&models.AccessToken{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *tokenRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.AccessToken{})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *tokenRepository) Touch(ctx context.Context, id uint, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.AccessToken{}).
		Where("id = ?", id).
		UpdateColumn("last_used_at", at).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
