package repository

import (
	"testing"

	"foodgram/internal/database"
	"foodgram/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

type fixture struct {
	alice, bob  models.User
	breakfast   models.Tag
	dinner      models.Tag
	flour, milk models.Ingredient
	egg         models.Ingredient
}

func seedFixture(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	f := fixture{
		alice:     models.User{Email: "alice@example.com", Username: "alice", FirstName: "Alice", LastName: "A", Password: "x"},
		bob:       models.User{Email: "bob@example.com", Username: "bob", FirstName: "Bob", LastName: "B", Password: "x"},
		breakfast: models.Tag{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
		dinner:    models.Tag{Name: "Dinner", Color: "#49B64E", Slug: "dinner"},
		flour:     models.Ingredient{Name: "flour", MeasurementUnit: "g"},
		milk:      models.Ingredient{Name: "milk", MeasurementUnit: "ml"},
		egg:       models.Ingredient{Name: "egg", MeasurementUnit: "pcs"},
	}
	for _, v := range []any{&f.alice, &f.bob, &f.breakfast, &f.dinner, &f.flour, &f.milk, &f.egg} {
		require.NoError(t, db.Create(v).Error)
	}
	return f
}

func createRecipe(t *testing.T, repo RecipeRepository, author uint, name string, tags []uint, qs ...models.IngredientQuantity) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{AuthorID: author, Name: name, Text: name + " text", CookingTime: 10}
	require.NoError(t, repo.Create(t.Context(), recipe, tags, qs))
	return recipe
}
