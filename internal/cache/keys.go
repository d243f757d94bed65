package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	RecipeKeyPrefix  = "recipe:%d"
	TagListKey       = "tags:all"
	IngredientKeyFmt = "ingredients:search:%s"
)

const (
	RecipeTTL     = 5 * time.Minute
	TagListTTL    = 30 * time.Minute
	IngredientTTL = 30 * time.Minute
)

func RecipeKey(recipeID uint) string {
	return fmt.Sprintf(RecipeKeyPrefix, recipeID)
}

// IngredientSearchKey keys a name search; the empty query is the full list.
func IngredientSearchKey(query string) string {
	return fmt.Sprintf(IngredientKeyFmt, query)
}

// Invalidate deletes key. A nil client is a no-op.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateRecipe(ctx context.Context, recipeID uint) {
	Invalidate(ctx, RecipeKey(recipeID))
}

func InvalidateTags(ctx context.Context) {
	Invalidate(ctx, TagListKey)
}

// InvalidateIngredients drops every cached ingredient search.
func InvalidateIngredients(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, fmt.Sprintf(IngredientKeyFmt, "*"), 100).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}
