package service

import (
	"context"
	"log/slog"
	"strings"

	"foodgram/internal/middleware"
	"foodgram/internal/models"
	"foodgram/internal/repository"
	"foodgram/internal/validation"
)

// CatalogService serves tags and ingredients.
type CatalogService struct {
	tags        repository.TagRepository
	ingredients repository.IngredientRepository
}

// NewCatalogService returns a new CatalogService.
func NewCatalogService(tags repository.TagRepository, ingredients repository.IngredientRepository) *CatalogService {
	return &CatalogService{tags: tags, ingredients: ingredients}
}

func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	return tags, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	return s.tags.GetByID(ctx, id)
}

// SearchIngredients lists ingredients whose name contains query (any case).
func (s *CatalogService) SearchIngredients(ctx context.Context, query string) ([]models.Ingredient, error) {
	items, err := s.ingredients.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Ingredient{}
	}
	return items, nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	return s.ingredients.GetByID(ctx, id)
}

// EnsureTags inserts tags whose slug is free, after validating each one.
func (s *CatalogService) EnsureTags(ctx context.Context, tags []models.Tag) (int64, error) {
	for _, t := range tags {
		if strings.TrimSpace(t.Name) == "" {
			return 0, models.NewValidationError("tag name is required")
		}
		if err := validation.ValidateTagSlug(t.Slug); err != nil {
			return 0, validationErr(err)
		}
		if err := validation.ValidateHexColor(t.Color); err != nil {
			return 0, validationErr(err)
		}
	}
	return s.tags.Upsert(ctx, tags)
}

// ImportIngredients bulk-inserts ingredients, skipping blank records and
// (name, unit) pairs that already exist. It returns the number inserted.
func (s *CatalogService) ImportIngredients(ctx context.Context, items []models.Ingredient) (int64, error) {
	clean := make([]models.Ingredient, 0, len(items))
	seen := make(map[[2]string]struct{}, len(items))
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		unit := strings.TrimSpace(it.MeasurementUnit)
		if name == "" || unit == "" {
			continue
		}
		key := [2]string{name, unit}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		clean = append(clean, models.Ingredient{Name: name, MeasurementUnit: unit})
	}

	inserted, err := s.ingredients.BulkInsert(ctx, clean, 500)
	if err != nil {
		return 0, err
	}
	middleware.Logger.InfoContext(ctx, "ingredients imported",
		slog.Int("records", len(items)),
		slog.Int64("inserted", inserted),
	)
	return inserted, nil
}
