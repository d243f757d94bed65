package models

import (
	"time"
)

// Recipe is authored by a user and composed of tags and ingredient quantities.
type Recipe struct {
	ID          uint                 `gorm:"primaryKey" json:"id"`
	AuthorID    uint                 `gorm:"not null;index" json:"author_id"`
	Name        string               `gorm:"size:200;not null" json:"name"`
	Image       string               `gorm:"size:500" json:"image"`
	Text        string               `gorm:"type:text;not null" json:"text"`
	CookingTime int                  `gorm:"not null;check:chk_recipes_cooking_time,cooking_time > 0" json:"cooking_time"`
	CreatedAt   time.Time            `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	Author      User                 `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Tags        []Tag                `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"-"`
	Ingredients []IngredientQuantity `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (Recipe) TableName() string {
	return "recipes"
}

// RecipeTag is a row of the recipe_tags join table.
type RecipeTag struct {
	RecipeID uint `gorm:"primaryKey"`
	TagID    uint `gorm:"primaryKey"`
}

// TableName specifies the table name for GORM
func (RecipeTag) TableName() string {
	return "recipe_tags"
}

// IngredientQuantity links an ingredient to a recipe with a positive amount.
// Rows are replaced wholesale whenever a recipe's ingredients change.
type IngredientQuantity struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	RecipeID     uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"recipe_id"`
	IngredientID uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient;index" json:"ingredient_id"`
	Amount       int        `gorm:"not null;check:chk_ingredient_quantities_amount,amount > 0" json:"amount"`
	Ingredient   Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (IngredientQuantity) TableName() string {
	return "ingredient_quantities"
}
