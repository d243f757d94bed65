package models

import (
	"time"
)

// RelationKind names one of the user-owned, uniqueness-guarded relations.
type RelationKind string

const (
	// RelationFavorite marks a recipe as a favorite of the user.
	RelationFavorite RelationKind = "favorite"
	// RelationCart puts a recipe into the user's shopping cart.
	RelationCart RelationKind = "shopping_cart"
	// RelationSubscription makes the user follow another user.
	RelationSubscription RelationKind = "subscription"
)

// Valid reports whether k is a known relation kind.
func (k RelationKind) Valid() bool {
	switch k {
	case RelationFavorite, RelationCart, RelationSubscription:
		return true
	}
	return false
}

// TargetsRecipe reports whether the relation points at a recipe (as opposed
// to a user).
func (k RelationKind) TargetsRecipe() bool {
	return k == RelationFavorite || k == RelationCart
}

// Favorite represents a user's favorite recipe.
// The combination of UserID and RecipeID must be unique.
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorites_user_recipe" json:"user_id"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_favorites_user_recipe;index" json:"recipe_id"`
	CreatedAt time.Time `json:"created_at"`

	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Recipe Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (Favorite) TableName() string {
	return "favorites"
}

// CartItem is a recipe placed in a user's shopping cart.
// The combination of UserID and RecipeID must be unique.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_items_user_recipe" json:"user_id"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_cart_items_user_recipe;index" json:"recipe_id"`
	CreatedAt time.Time `json:"created_at"`

	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Recipe Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (CartItem) TableName() string {
	return "cart_items"
}

// Subscription means UserID follows AuthorID. A user cannot follow themselves.
type Subscription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_subscriptions_user_author" json:"user_id"`
	AuthorID  uint      `gorm:"not null;uniqueIndex:idx_subscriptions_user_author;index;check:chk_subscriptions_not_self,user_id <> author_id" json:"author_id"`
	CreatedAt time.Time `json:"created_at"`

	User   User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Author User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (Subscription) TableName() string {
	return "subscriptions"
}
