package repository

import (
	"context"
	"errors"

	"agora/internal/models"

	"gorm.io/gorm"
)

// ThemeRepository reads and seeds post themes.
type ThemeRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Theme, error)
	List(ctx context.Context) ([]models.Theme, error)
	Ensure(ctx context.Context, name string) (*models.Theme, error)
}

type themeRepository struct {
	db *gorm.DB
}

// NewThemeRepository creates a new theme repository
func NewThemeRepository(db *gorm.DB) ThemeRepository {
	return &themeRepository{db: db}
}

func (r *themeRepository) GetByID(ctx context.Context, id uint) (*models.Theme, error) {
	var theme models.Theme
	if err := r.db.WithContext(ctx).First(&theme, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Theme", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &theme, nil
}

func (r *themeRepository) List(ctx context.Context) ([]models.Theme, error) {
	var themes []models.Theme
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&themes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return themes, nil
}

// Ensure returns the theme with name, creating it if needed.
func (r *themeRepository) Ensure(ctx context.Context, name string) (*models.Theme, error) {
	theme := models.Theme{Name: name}
	if err := r.db.WithContext(ctx).Where("name = ?", name).FirstOrCreate(&theme).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return &theme, nil
}
