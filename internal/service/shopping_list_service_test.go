package service

import (
	"context"
	"testing"

	"foodgram/internal/featureflags"
	"foodgram/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateGroupsByIngredientID(t *testing.T) {
	lines := []models.ShoppingListLine{
		{IngredientID: 3, Name: "milk", MeasurementUnit: "ml", Amount: 200},
		{IngredientID: 1, Name: "flour", MeasurementUnit: "g", Amount: 100},
		{IngredientID: 3, Name: "milk", MeasurementUnit: "ml", Amount: 50},
		{IngredientID: 2, Name: "egg", MeasurementUnit: "pcs", Amount: 2},
		{IngredientID: 1, Name: "flour", MeasurementUnit: "g", Amount: 300},
	}

	got := Aggregate(lines)
	assert.Equal(t, []models.ShoppingListLine{
		{IngredientID: 1, Name: "flour", MeasurementUnit: "g", Amount: 400},
		{IngredientID: 2, Name: "egg", MeasurementUnit: "pcs", Amount: 2},
		{IngredientID: 3, Name: "milk", MeasurementUnit: "ml", Amount: 250},
	}, got)
}

func TestAggregateKeepsSameNameDifferentUnitsApart(t *testing.T) {
	got := Aggregate([]models.ShoppingListLine{
		{IngredientID: 4, Name: "salt", MeasurementUnit: "g", Amount: 5},
		{IngredientID: 5, Name: "salt", MeasurementUnit: "pinch", Amount: 1},
	})
	require.Len(t, got, 2)
	assert.Equal(t, "salt: 5 g\nsalt: 1 pinch", Render(got))
}

func TestRenderFormat(t *testing.T) {
	assert.Equal(t, "", Render(nil))
	assert.Equal(t, "flour: 400 g\negg: 2 pcs", Render([]models.ShoppingListLine{
		{IngredientID: 1, Name: "flour", MeasurementUnit: "g", Amount: 400},
		{IngredientID: 2, Name: "egg", MeasurementUnit: "pcs", Amount: 2},
	}))
}

func TestDownloadInMemoryStrategy(t *testing.T) {
	repo := &shoppingListRepoStub{
		cartLinesFn: func(context.Context, uint) ([]models.ShoppingListLine, error) {
			return []models.ShoppingListLine{
				{IngredientID: 2, Name: "sugar", MeasurementUnit: "g", Amount: 10},
				{IngredientID: 2, Name: "sugar", MeasurementUnit: "g", Amount: 15},
			}, nil
		},
		aggregatedLinesFn: func(context.Context, uint) ([]models.ShoppingListLine, error) {
			t.Fatal("SQL grouping must stay off by default")
			return nil, nil
		},
	}
	svc := NewShoppingListService(repo, featureflags.NewManager(featureflags.Defaults), "")

	list, err := svc.Download(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "shopping_list.txt", list.Filename)
	assert.Equal(t, ShoppingListContentType, list.ContentType)
	assert.Equal(t, "sugar: 25 g", string(list.Body))
}

func TestDownloadSQLStrategy(t *testing.T) {
	repo := &shoppingListRepoStub{
		aggregatedLinesFn: func(context.Context, uint) ([]models.ShoppingListLine, error) {
			return []models.ShoppingListLine{{IngredientID: 1, Name: "rice", MeasurementUnit: "g", Amount: 500}}, nil
		},
	}
	flags := featureflags.NewManager(featureflags.ShoppingListSQLGrouping + "=on")
	svc := NewShoppingListService(repo, flags, "list.txt")

	list, err := svc.Download(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "list.txt", list.Filename)
	assert.Equal(t, "rice: 500 g", string(list.Body))
}

func TestDownloadEmptyCart(t *testing.T) {
	repo := &shoppingListRepoStub{
		cartLinesFn: func(context.Context, uint) ([]models.ShoppingListLine, error) { return nil, nil },
	}
	svc := NewShoppingListService(repo, nil, "")

	list, err := svc.Download(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, list.Body)
	assert.Empty(t, list.Lines)
}
