package service

import (
	"context"
	"testing"

	"foodgram/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_ImportIngredientsCleansInput(t *testing.T) {
	var got []models.Ingredient
	repo := &ingredientRepoStub{
		bulkInsertFn: func(_ context.Context, items []models.Ingredient, _ int) (int64, error) {
			got = items
			return int64(len(items)), nil
		},
	}
	svc := NewCatalogService(&tagRepoStub{}, repo)

	n, err := svc.ImportIngredients(context.Background(), []models.Ingredient{
		{Name: " salt ", MeasurementUnit: "g"},
		{Name: "salt", MeasurementUnit: "g"},
		{Name: "", MeasurementUnit: "g"},
		{Name: "salt", MeasurementUnit: "pinch"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, []models.Ingredient{
		{Name: "salt", MeasurementUnit: "g"},
		{Name: "salt", MeasurementUnit: "pinch"},
	}, got)
}

func TestCatalogService_EnsureTagsValidates(t *testing.T) {
	repo := &tagRepoStub{
		upsertFn: func(_ context.Context, tags []models.Tag) (int64, error) { return int64(len(tags)), nil },
	}
	svc := NewCatalogService(repo, &ingredientRepoStub{})

	_, err := svc.EnsureTags(context.Background(), []models.Tag{{Name: "Bad", Slug: "bad slug", Color: "#000000"}})
	requireCode(t, err, models.CodeValidation)

	_, err = svc.EnsureTags(context.Background(), []models.Tag{{Name: "Bad", Slug: "bad", Color: "black"}})
	requireCode(t, err, models.CodeValidation)

	n, err := svc.EnsureTags(context.Background(), []models.Tag{{Name: "Lunch", Slug: "lunch", Color: "#49B64E"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCatalogService_EmptyListsAreNonNil(t *testing.T) {
	svc := NewCatalogService(
		&tagRepoStub{listFn: func(context.Context) ([]models.Tag, error) { return nil, nil }},
		&ingredientRepoStub{searchFn: func(context.Context, string) ([]models.Ingredient, error) { return nil, nil }},
	)
	tags, err := svc.ListTags(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tags)
	items, err := svc.SearchIngredients(context.Background(), "x")
	require.NoError(t, err)
	assert.NotNil(t, items)
}
