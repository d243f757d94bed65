// Package bootstrap wires process-level dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"foodgram/internal/cache"
	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/middleware"
	"foodgram/internal/repository"
	"foodgram/internal/seed"
	"foodgram/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedTags inserts seed.DefaultTags when their slugs are free.
	SeedTags bool
	// IngredientsPath, when set, imports that dataset before serving.
	IngredientsPath string
}

// InitRuntime connects to DB and Redis and optionally loads reference data.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// A nil client means the API runs without cache.
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := LoadReferenceData(ctx, db, opts); err != nil {
		return nil, nil, err
	}
	return db, r, nil
}

// LoadReferenceData seeds tags and imports ingredients per opts. Both steps
// skip rows that already exist.
func LoadReferenceData(ctx context.Context, db *gorm.DB, opts Options) error {
	catalog := service.NewCatalogService(repository.NewTagRepository(db), repository.NewIngredientRepository(db))

	if opts.SeedTags {
		n, err := catalog.EnsureTags(ctx, seed.DefaultTags)
		if err != nil {
			return fmt.Errorf("failed to seed default tags: %w", err)
		}
		middleware.Logger.InfoContext(ctx, "default tags ensured", slog.Int64("inserted", n))
	}

	if opts.IngredientsPath != "" {
		items, err := seed.LoadIngredients(opts.IngredientsPath)
		if err != nil {
			return fmt.Errorf("failed to load ingredients: %w", err)
		}
		if _, err := catalog.ImportIngredients(ctx, items); err != nil {
			return fmt.Errorf("failed to import ingredients: %w", err)
		}
	}
	return nil
}
