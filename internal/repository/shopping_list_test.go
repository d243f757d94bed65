package repository

import (
	"context"
	"testing"

	"foodgram/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShoppingListRepository(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	recipes := NewRecipeRepository(db)
	relations := NewRelationRepository(db)
	repo := NewShoppingListRepository(db)
	ctx := context.Background()

	pancakes := createRecipe(t, recipes, f.bob.ID, "Pancakes", []uint{f.breakfast.ID},
		models.IngredientQuantity{IngredientID: f.flour.ID, Amount: 200},
		models.IngredientQuantity{IngredientID: f.milk.ID, Amount: 300},
	)
	crepes := createRecipe(t, recipes, f.bob.ID, "Crepes", []uint{f.breakfast.ID},
		models.IngredientQuantity{IngredientID: f.flour.ID, Amount: 100},
		models.IngredientQuantity{IngredientID: f.egg.ID, Amount: 2},
	)
	createRecipe(t, recipes, f.bob.ID, "Ignored", []uint{f.dinner.ID},
		models.IngredientQuantity{IngredientID: f.flour.ID, Amount: 999},
	)

	empty, err := repo.AggregatedLines(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, relations.Add(ctx, models.RelationCart, f.alice.ID, pancakes.ID))
	require.NoError(t, relations.Add(ctx, models.RelationCart, f.alice.ID, crepes.ID))

	raw, err := repo.CartLines(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Len(t, raw, 4)

	lines, err := repo.AggregatedLines(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.ShoppingListLine{
		{IngredientID: f.flour.ID, Name: "flour", MeasurementUnit: "g", Amount: 300},
		{IngredientID: f.milk.ID, Name: "milk", MeasurementUnit: "ml", Amount: 300},
		{IngredientID: f.egg.ID, Name: "egg", MeasurementUnit: "pcs", Amount: 2},
	}, lines)
}
