package database

import "foodgram/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models,
// ordered so that referenced tables are created first.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.IngredientQuantity{},
		&models.Favorite{},
		&models.CartItem{},
		&models.Subscription{},
	}
}
