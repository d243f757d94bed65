package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedRecipe struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestAsideMissThenHit(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *cachedRecipe) func() error {
		return func() error {
			calls++
			*dest = cachedRecipe{ID: 7, Name: "Borscht"}
			return nil
		}
	}

	var first cachedRecipe
	require.NoError(t, Aside(ctx, RecipeKey(7), &first, RecipeTTL, fetch(&first)))
	assert.Equal(t, "Borscht", first.Name)
	assert.True(t, mr.Exists("recipe:7"))

	var second cachedRecipe
	require.NoError(t, Aside(ctx, RecipeKey(7), &second, RecipeTTL, fetch(&second)))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, RecipeTTL, mr.TTL("recipe:7"))
}

func TestAsideWithoutClientFetches(t *testing.T) {
	SetClient(nil)
	var got cachedRecipe
	err := Aside(context.Background(), RecipeKey(1), &got, RecipeTTL, func() error {
		got.ID = 1
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.ID)
}

func TestAsideFetchErrorIsNotCached(t *testing.T) {
	mr := withMiniredis(t)
	var got cachedRecipe
	err := Aside(context.Background(), RecipeKey(3), &got, RecipeTTL, func() error {
		return errors.New("db down")
	})
	require.Error(t, err)
	assert.False(t, mr.Exists("recipe:3"))
}

func TestAsideDegradesOnRedisFailure(t *testing.T) {
	mr := withMiniredis(t)
	mr.Close()

	var got cachedRecipe
	err := Aside(context.Background(), RecipeKey(4), &got, RecipeTTL, func() error {
		got.Name = "fallback"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fallback", got.Name)
}

func TestInvalidateRecipe(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()
	require.NoError(t, SetJSON(ctx, RecipeKey(9), cachedRecipe{ID: 9}, RecipeTTL))
	require.True(t, mr.Exists("recipe:9"))

	InvalidateRecipe(ctx, 9)
	assert.False(t, mr.Exists("recipe:9"))
}

func TestInvalidateIngredientsClearsAllSearches(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()
	require.NoError(t, SetJSON(ctx, IngredientSearchKey(""), []string{"a"}, IngredientTTL))
	require.NoError(t, SetJSON(ctx, IngredientSearchKey("sug"), []string{"sugar"}, IngredientTTL))
	require.NoError(t, SetJSON(ctx, TagListKey, []string{"breakfast"}, TagListTTL))

	InvalidateIngredients(ctx)
	assert.False(t, mr.Exists(IngredientSearchKey("")))
	assert.False(t, mr.Exists(IngredientSearchKey("sug")))
	assert.True(t, mr.Exists(TagListKey))
}

func TestGetJSONMissAndFamily(t *testing.T) {
	withMiniredis(t)
	var dest cachedRecipe
	found, err := GetJSON(context.Background(), "recipe:404", &dest)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "recipe", family("recipe:404"))
	assert.Equal(t, "tags", family(TagListKey))
}

func TestInitRedisInvalidURLLeavesClientNil(t *testing.T) {
	InitRedis("redis://localhost:notaport")
	assert.Nil(t, GetClient())
}
