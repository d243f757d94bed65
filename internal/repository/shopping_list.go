package repository

import (
	"context"

	"foodgram/internal/models"
	"foodgram/internal/observability"

	"gorm.io/gorm"
)

// ShoppingListRepository reads the ingredient quantities behind a user's cart.
type ShoppingListRepository interface {
	// CartLines returns one line per (cart recipe, ingredient) pair, unaggregated.
	CartLines(ctx context.Context, userID uint) ([]models.ShoppingListLine, error)
	// AggregatedLines sums amounts per ingredient in the database, ordered by ingredient id.
	AggregatedLines(ctx context.Context, userID uint) ([]models.ShoppingListLine, error)
}

type shoppingListRepository struct {
	db *gorm.DB
}

// NewShoppingListRepository returns a new ShoppingListRepository implementation.
func NewShoppingListRepository(db *gorm.DB) ShoppingListRepository {
	return &shoppingListRepository{db: db}
}

func (r *shoppingListRepository) cartQuantities(ctx context.Context, userID uint) *gorm.DB {
	return readDB(r.db).WithContext(ctx).
		Table("ingredient_quantities AS iq").
		Joins("JOIN cart_items ci ON ci.recipe_id = iq.recipe_id").
		Joins("JOIN ingredients i ON i.id = iq.ingredient_id").
		Where("ci.user_id = ?", userID)
}

func (r *shoppingListRepository) CartLines(ctx context.Context, userID uint) ([]models.ShoppingListLine, error) {
	defer observability.TrackQuery("select", "cart_items")()
	var lines []models.ShoppingListLine
	if err := r.cartQuantities(ctx, userID).
		Select("iq.ingredient_id AS ingredient_id, i.name AS name, i.measurement_unit AS measurement_unit, iq.amount AS amount").
		Order("iq.ingredient_id ASC, iq.recipe_id ASC").
		Scan(&lines).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return lines, nil
}

func (r *shoppingListRepository) AggregatedLines(ctx context.Context, userID uint) ([]models.ShoppingListLine, error) {
	defer observability.TrackQuery("aggregate", "cart_items")()
	var lines []models.ShoppingListLine
	if err := r.cartQuantities(ctx, userID).
		Select("iq.ingredient_id AS ingredient_id, i.name AS name, i.measurement_unit AS measurement_unit, SUM(iq.amount) AS amount").
		Group("iq.ingredient_id, i.name, i.measurement_unit").
		Order("iq.ingredient_id ASC").
		Scan(&lines).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return lines, nil
}
