package repository

import (
	"context"
	"errors"

	"foodgram/internal/models"
	"foodgram/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeFilter narrows ListRecipes. Zero values mean "no filter".
type RecipeFilter struct {
	AuthorID    uint
	TagSlugs    []string
	FavoritedBy uint
	InCartOf    uint
	Page        int
	Limit       int
}

// RecipeChanges holds the scalar fields an update may set. Nil pointers are
// left untouched.
type RecipeChanges struct {
	Name        *string
	Image       *string
	Text        *string
	CookingTime *int
}

// RecipeRepository defines persistence operations for recipes and their composition.
type RecipeRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Recipe, error)
	GetShort(ctx context.Context, id uint) (*models.RecipeShort, error)
	GetAuthorID(ctx context.Context, id uint) (uint, error)
	List(ctx context.Context, filter RecipeFilter) ([]models.Recipe, int64, error)
	// Create inserts recipe, its tag links and its quantities in one transaction.
	Create(ctx context.Context, recipe *models.Recipe, tagIDs []uint, quantities []models.IngredientQuantity) error
	// Update applies changes; non-empty tagIDs or quantities replace the current sets.
	Update(ctx context.Context, id uint, changes RecipeChanges, tagIDs []uint, quantities []models.IngredientQuantity) error
	// Delete removes the recipe together with its quantities, tag links, favorites and cart items.
	Delete(ctx context.Context, id uint) error
	ShortByAuthor(ctx context.Context, authorID uint, limit int) ([]models.RecipeShort, error)
	CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error)
}

type recipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository returns a new RecipeRepository implementation.
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func withComposition(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id ASC") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("ingredient_quantities.ingredient_id ASC") }).
		Preload("Ingredients.Ingredient")
}

func (r *recipeRepository) GetByID(ctx context.Context, id uint) (*models.Recipe, error) {
	return getRecipe(withComposition(readDB(r.db).WithContext(ctx)), id)
}

func getRecipe(db *gorm.DB, id uint) (*models.Recipe, error) {
	defer observability.TrackQuery("select", "recipes")()
	var recipe models.Recipe
	if err := db.First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Recipe", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &recipe, nil
}

func (r *recipeRepository) GetShort(ctx context.Context, id uint) (*models.RecipeShort, error) {
	var recipe models.Recipe
	err := readDB(r.db).WithContext(ctx).
		Select("id", "name", "image", "cooking_time").
		First(&recipe, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Recipe", id)
		}
		return nil, models.NewInternalError(err)
	}
	short := models.ShortRecipe(&recipe)
	return &short, nil
}

func (r *recipeRepository) GetAuthorID(ctx context.Context, id uint) (uint, error) {
	var recipe models.Recipe
	if err := r.db.WithContext(ctx).Select("id", "author_id").First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, models.NewNotFoundError("Recipe", id)
		}
		return 0, models.NewInternalError(err)
	}
	return recipe.AuthorID, nil
}

func (r *recipeRepository) List(ctx context.Context, filter RecipeFilter) ([]models.Recipe, int64, error) {
	defer observability.TrackQuery("list", "recipes")()
	limit, offset := paginate(filter.Page, filter.Limit)
	db := readDB(r.db).WithContext(ctx)

	q := db.Model(&models.Recipe{})
	if filter.AuthorID != 0 {
		q = q.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		q = q.Where("recipes.id IN (?)", db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs))
	}
	if filter.FavoritedBy != 0 {
		q = q.Where("recipes.id IN (?)", db.Table("favorites").
			Select("recipe_id").Where("user_id = ?", filter.FavoritedBy))
	}
	if filter.InCartOf != 0 {
		q = q.Where("recipes.id IN (?)", db.Table("cart_items").
			Select("recipe_id").Where("user_id = ?", filter.InCartOf))
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	if total == 0 {
		return []models.Recipe{}, 0, nil
	}

	var recipes []models.Recipe
	if err := withComposition(q).
		Order("recipes.created_at DESC, recipes.id DESC").
		Limit(limit).Offset(offset).
		Find(&recipes).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return recipes, total, nil
}

func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe, tagIDs []uint, quantities []models.IngredientQuantity) error {
	defer observability.TrackQuery("insert", "recipes")()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkComposition(tx, tagIDs, quantities); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := attachTags(tx, recipe.ID, tagIDs); err != nil {
			return err
		}
		return attachIngredients(tx, recipe.ID, quantities)
	})
}

func (r *recipeRepository) Update(ctx context.Context, id uint, changes RecipeChanges, tagIDs []uint, quantities []models.IngredientQuantity) error {
	defer observability.TrackQuery("update", "recipes")()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Recipe{}).Where("id = ?", id).Count(&exists).Error; err != nil {
			return models.NewInternalError(err)
		}
		if exists == 0 {
			return models.NewNotFoundError("Recipe", id)
		}
		if err := checkComposition(tx, tagIDs, quantities); err != nil {
			return err
		}

		updates := map[string]any{}
		if changes.Name != nil {
			updates["name"] = *changes.Name
		}
		if changes.Image != nil {
			updates["image"] = *changes.Image
		}
		if changes.Text != nil {
			updates["text"] = *changes.Text
		}
		if changes.CookingTime != nil {
			updates["cooking_time"] = *changes.CookingTime
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.Recipe{ID: id}).Updates(updates).Error; err != nil {
				return models.NewInternalError(err)
			}
		}

		if len(tagIDs) > 0 {
			if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeTag{}).Error; err != nil {
				return models.NewInternalError(err)
			}
			if err := attachTags(tx, id, tagIDs); err != nil {
				return err
			}
		}
		if len(quantities) > 0 {
			if err := tx.Where("recipe_id = ?", id).Delete(&models.IngredientQuantity{}).Error; err != nil {
				return models.NewInternalError(err)
			}
			if err := attachIngredients(tx, id, quantities); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *recipeRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "recipes")()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []any{
			&models.IngredientQuantity{},
			&models.RecipeTag{},
			&models.Favorite{},
			&models.CartItem{},
		} {
			if err := tx.Where("recipe_id = ?", id).Delete(dependent).Error; err != nil {
				return models.NewInternalError(err)
			}
		}
		res := tx.Delete(&models.Recipe{}, id)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Recipe", id)
		}
		return nil
	})
}

func (r *recipeRepository) ShortByAuthor(ctx context.Context, authorID uint, limit int) ([]models.RecipeShort, error) {
	q := readDB(r.db).WithContext(ctx).
		Model(&models.Recipe{}).
		Select("id", "name", "image", "cooking_time").
		Where("author_id = ?", authorID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var recipes []models.Recipe
	if err := q.Find(&recipes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	out := make([]models.RecipeShort, 0, len(recipes))
	for i := range recipes {
		out = append(out, models.ShortRecipe(&recipes[i]))
	}
	return out, nil
}

func (r *recipeRepository) CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		AuthorID uint
		Total    int64
	}
	if err := readDB(r.db).WithContext(ctx).
		Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range rows {
		counts[row.AuthorID] = row.Total
	}
	return counts, nil
}

func checkComposition(tx *gorm.DB, tagIDs []uint, quantities []models.IngredientQuantity) error {
	missing, err := missingIDs(tx, &models.Tag{}, tagIDs)
	if err != nil {
		return models.NewInternalError(err)
	}
	if len(missing) > 0 {
		return unknownIDsError("Tag", missing)
	}

	ingredientIDs := make([]uint, 0, len(quantities))
	for _, q := range quantities {
		ingredientIDs = append(ingredientIDs, q.IngredientID)
	}
	missing, err = missingIDs(tx, &models.Ingredient{}, ingredientIDs)
	if err != nil {
		return models.NewInternalError(err)
	}
	if len(missing) > 0 {
		return unknownIDsError("Ingredient", missing)
	}
	return nil
}

func attachTags(tx *gorm.DB, recipeID uint, tagIDs []uint) error {
	if len(tagIDs) == 0 {
		return nil
	}
	links := make([]models.RecipeTag, 0, len(tagIDs))
	seen := make(map[uint]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		links = append(links, models.RecipeTag{RecipeID: recipeID, TagID: id})
	}
	if err := tx.Create(&links).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func attachIngredients(tx *gorm.DB, recipeID uint, quantities []models.IngredientQuantity) error {
	if len(quantities) == 0 {
		return nil
	}
	rows := make([]models.IngredientQuantity, 0, len(quantities))
	for _, q := range quantities {
		rows = append(rows, models.IngredientQuantity{
			RecipeID:     recipeID,
			IngredientID: q.IngredientID,
			Amount:       q.Amount,
		})
	}
	if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("ingredients must not repeat")
		}
		return models.NewInternalError(err)
	}
	return nil
}
