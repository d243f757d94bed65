package repository

import (
	"context"
	"testing"

	"foodgram/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngredientRepository_SearchMatchesSubstringAnyCase(t *testing.T) {
	db := setupTestDB(t)
	repo := NewIngredientRepository(db)
	ctx := context.Background()

	inserted, err := repo.BulkInsert(ctx, []models.Ingredient{
		{Name: "Sugar", MeasurementUnit: "g"},
		{Name: "sugar syrup", MeasurementUnit: "ml"},
		{Name: "brown sugar", MeasurementUnit: "g"},
		{Name: "salt", MeasurementUnit: "g"},
		{Name: "100%_juice", MeasurementUnit: "ml"},
	}, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), inserted)

	names := func(items []models.Ingredient) []string {
		out := make([]string, 0, len(items))
		for _, it := range items {
			out = append(out, it.Name)
		}
		return out
	}

	got, err := repo.Search(ctx, "SUG")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Sugar", "sugar syrup", "brown sugar"}, names(got))

	got, err = repo.Search(ctx, "syrup")
	require.NoError(t, err)
	assert.Equal(t, []string{"sugar syrup"}, names(got))

	got, err = repo.Search(ctx, "0%_j")
	require.NoError(t, err)
	assert.Equal(t, []string{"100%_juice"}, names(got))

	got, err = repo.Search(ctx, "%")
	require.NoError(t, err)
	assert.Equal(t, []string{"100%_juice"}, names(got), "wildcards are matched literally")

	all, err := repo.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestIngredientRepository_BulkInsertIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewIngredientRepository(db)
	ctx := context.Background()
	items := []models.Ingredient{{Name: "salt", MeasurementUnit: "g"}, {Name: "salt", MeasurementUnit: "pinch"}}

	_, err := repo.BulkInsert(ctx, items, 0)
	require.NoError(t, err)
	again, err := repo.BulkInsert(ctx, []models.Ingredient{{Name: "salt", MeasurementUnit: "g"}}, 0)
	require.NoError(t, err)
	assert.Zero(t, again)

	var n int64
	require.NoError(t, db.Model(&models.Ingredient{}).Count(&n).Error)
	assert.Equal(t, int64(2), n)
}

func TestTagRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	n, err := repo.Upsert(ctx, []models.Tag{
		{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
		{Name: "Lunch", Color: "#49B64E", Slug: "lunch"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	tags, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)

	tag, err := repo.GetByID(ctx, tags[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "lunch", tag.Slug)

	_, err = repo.GetByID(ctx, 77)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestLikePrefixEscapesWildcards(t *testing.T) {
	assert.Equal(t, `50\%\_off%`, likePrefix("50%_OFF"))
}

func TestPaginate(t *testing.T) {
	limit, offset := paginate(3, 10)
	assert.Equal(t, 10, limit)
	assert.Equal(t, 20, offset)

	limit, offset = paginate(0, 0)
	assert.Equal(t, 6, limit)
	assert.Zero(t, offset)

	limit, _ = paginate(1, 1000)
	assert.Equal(t, 100, limit)
}
