// Package bootstrap prepares the database and Redis for the API process.
package bootstrap

import (
	"context"
	"fmt"
	"log"

	"agora/internal/cache"
	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// InitRuntime connects to the database and Redis, then prepares reference data.
// The Redis client may be nil when REDIS_URL is invalid.
func InitRuntime(ctx context.Context, cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	r := cache.InitRedis(cfg.RedisURL)

	if err := Prepare(ctx, cfg, db); err != nil {
		return nil, nil, err
	}
	return db, r, nil
}

// Prepare ensures the configured themes exist and, outside production, seeds an
// empty database with SEED_PRESET.
func Prepare(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	themes := repository.NewThemeRepository(db)
	for _, name := range cfg.ThemeNames() {
		if _, err := themes.Ensure(ctx, name); err != nil {
			return fmt.Errorf("ensure theme %q: %w", name, err)
		}
	}

	if cfg.SeedPreset == "" || cfg.IsProduction() {
		return nil
	}
	var users int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&users).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if users > 0 {
		return nil
	}

	preset, err := seed.LoadPreset(cfg.SeedPreset)
	if err != nil {
		return err
	}
	sum, err := seed.NewSeeder(db, seed.Options{Preset: preset}).Run(ctx)
	if err != nil {
		return fmt.Errorf("seed %q: %w", cfg.SeedPreset, err)
	}
	log.Printf("development database seeded with preset %q (%d users, %d posts)", preset.Name, sum.Users, sum.Posts)
	return nil
}
