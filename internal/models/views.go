package models

import (
	"time"
)

// RecipeShort is the compact recipe projection returned by favorite and cart
// toggles and embedded in author listings.
type RecipeShort struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// ShortRecipe projects r into its compact view.
func ShortRecipe(r *Recipe) RecipeShort {
	return RecipeShort{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

// UserView is a user as seen by a (possibly anonymous) viewer.
type UserView struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// ViewOfUser projects u; IsSubscribed is left for the caller to fill in.
func ViewOfUser(u *User) UserView {
	return UserView{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// UserWithRecipes is an author together with their most recent recipes.
type UserWithRecipes struct {
	UserView
	Recipes      []RecipeShort `json:"recipes"`
	RecipesCount int64         `json:"recipes_count"`
}

// IngredientAmount is one ingredient line of a recipe view.
type IngredientAmount struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeView is the full recipe representation.
type RecipeView struct {
	ID               uint               `json:"id"`
	Tags             []Tag              `json:"tags"`
	Author           UserView           `json:"author"`
	Ingredients      []IngredientAmount `json:"ingredients"`
	IsFavorited      bool               `json:"is_favorited"`
	IsInShoppingCart bool               `json:"is_in_shopping_cart"`
	Name             string             `json:"name"`
	Image            string             `json:"image"`
	Text             string             `json:"text"`
	CookingTime      int                `json:"cooking_time"`
	CreatedAt        time.Time          `json:"created_at"`
}

// ViewOfRecipe builds the viewer-independent part of a recipe view from a
// recipe loaded with its author, tags and ingredient quantities.
func ViewOfRecipe(r *Recipe) RecipeView {
	view := RecipeView{
		ID:          r.ID,
		Tags:        make([]Tag, 0, len(r.Tags)),
		Author:      ViewOfUser(&r.Author),
		Ingredients: make([]IngredientAmount, 0, len(r.Ingredients)),
		Name:        r.Name,
		Image:       r.Image,
		Text:        r.Text,
		CookingTime: r.CookingTime,
		CreatedAt:   r.CreatedAt,
	}
	view.Tags = append(view.Tags, r.Tags...)
	for _, q := range r.Ingredients {
		view.Ingredients = append(view.Ingredients, IngredientAmount{
			ID:              q.IngredientID,
			Name:            q.Ingredient.Name,
			MeasurementUnit: q.Ingredient.MeasurementUnit,
			Amount:          q.Amount,
		})
	}
	return view
}

// RelationResult describes a relation that was just created together with a
// projection of its target.
type RelationResult struct {
	Kind     RelationKind     `json:"kind"`
	UserID   uint             `json:"user_id"`
	TargetID uint             `json:"target_id"`
	Recipe   *RecipeShort     `json:"recipe,omitempty"`
	Author   *UserWithRecipes `json:"author,omitempty"`
}

// Payload returns the target projection that API clients receive.
func (r *RelationResult) Payload() any {
	if r.Author != nil {
		return r.Author
	}
	return r.Recipe
}

// ShoppingListLine is one ingredient row of a shopping list. Before
// aggregation a line holds a single recipe's quantity; afterwards the summed
// amount for that ingredient.
type ShoppingListLine struct {
	IngredientID    uint   `json:"ingredient_id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int64  `json:"amount"`
}

// Page is a counted slice of results.
type Page[T any] struct {
	Count   int64 `json:"count"`
	Results []T   `json:"results"`
}
