package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"foodgram/internal/cache"
	"foodgram/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagRepository defines persistence operations for tags.
type TagRepository interface {
	List(ctx context.Context) ([]models.Tag, error)
	GetByID(ctx context.Context, id uint) (*models.Tag, error)
	Upsert(ctx context.Context, tags []models.Tag) (int64, error)
}

// IngredientRepository defines persistence operations for ingredients.
type IngredientRepository interface {
	// Search returns ingredients whose name contains query, case-insensitively.
	Search(ctx context.Context, query string) ([]models.Ingredient, error)
	GetByID(ctx context.Context, id uint) (*models.Ingredient, error)
	// BulkInsert inserts ingredients, skipping existing (name, unit) pairs.
	BulkInsert(ctx context.Context, items []models.Ingredient, batchSize int) (int64, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository returns a new TagRepository implementation.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) List(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := cache.Aside(ctx, cache.TagListKey, &tags, cache.TagListTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).Order("id ASC").Find(&tags).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *tagRepository) GetByID(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := readDB(r.db).WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Tag", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &tag, nil
}

// Upsert inserts tags whose slug is not taken yet.
func (r *tagRepository) Upsert(ctx context.Context, tags []models.Tag) (int64, error) {
	if len(tags) == 0 {
		return 0, nil
	}
	rows := append([]models.Tag(nil), tags...)
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	cache.InvalidateTags(ctx)
	return res.RowsAffected, nil
}

type ingredientRepository struct {
	db *gorm.DB
}

// NewIngredientRepository returns a new IngredientRepository implementation.
func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

func likeContains(query string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(query)) + "%"
}

func (r *ingredientRepository) Search(ctx context.Context, query string) ([]models.Ingredient, error) {
	query = strings.TrimSpace(query)
	var items []models.Ingredient
	err := cache.Aside(ctx, cache.IngredientSearchKey(strings.ToLower(query)), &items, cache.IngredientTTL, func() error {
		q := readDB(r.db).WithContext(ctx).Order("name ASC, id ASC")
		if query != "" {
			q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, likeContains(query))
		}
		if err := q.Find(&items).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ingredientRepository) GetByID(ctx context.Context, id uint) (*models.Ingredient, error) {
	var item models.Ingredient
	if err := readDB(r.db).WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Ingredient", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &item, nil
}

func (r *ingredientRepository) BulkInsert(ctx context.Context, items []models.Ingredient, batchSize int) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}, {Name: "measurement_unit"}},
			DoNothing: true,
		}).
		CreateInBatches(&items, batchSize)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		cache.InvalidateIngredients(ctx)
	}
	return res.RowsAffected, nil
}

// missingIDs returns the ids from want that have no row in model's table.
func missingIDs(tx *gorm.DB, model any, want []uint) ([]uint, error) {
	if len(want) == 0 {
		return nil, nil
	}
	var found []uint
	if err := tx.Model(model).Where("id IN ?", want).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	seen := make(map[uint]struct{}, len(found))
	for _, id := range found {
		seen[id] = struct{}{}
	}
	var missing []uint
	for _, id := range want {
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing, nil
}

func unknownIDsError(resource string, ids []uint) error {
	return models.NewValidationError(fmt.Sprintf("%s with ID %v does not exist", resource, ids))
}
