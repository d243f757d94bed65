package seed

import (
	"context"
	"fmt"
	"log/slog"

	"foodgram/internal/middleware"
	"foodgram/internal/models"
	"foodgram/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password of every generated user.
const DemoPassword = "password123"

// Options controls how much demo content is generated.
type Options struct {
	Users          int
	RecipesPerUser int
	// FavoritesPerUser, CartPerUser and SubscriptionsPerUser cap the random
	// relations created for each user.
	FavoritesPerUser     int
	CartPerUser          int
	SubscriptionsPerUser int
	// SkipBcrypt stores DemoPassword unhashed. Tests only.
	SkipBcrypt bool
	// Seed makes generation deterministic when non-zero.
	Seed int64
}

// Factory builds users and recipes with gofakeit and persists them through
// the repositories, so recipe composition and relation rules still apply.
type Factory struct {
	db        *gorm.DB
	opts      Options
	faker     *gofakeit.Faker
	users     repository.UserRepository
	recipes   repository.RecipeRepository
	relations repository.RelationRepository
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	return &Factory{
		db:        db,
		opts:      opts,
		faker:     gofakeit.New(opts.Seed),
		users:     repository.NewUserRepository(db),
		recipes:   repository.NewRecipeRepository(db),
		relations: repository.NewRelationRepository(db),
	}
}

func (f *Factory) password() (string, error) {
	if f.opts.SkipBcrypt {
		return DemoPassword, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	return string(hash), err
}

// CreateUser persists a generated user. n keeps usernames and emails unique.
func (f *Factory) CreateUser(ctx context.Context, n int, overrides ...func(*models.User)) (*models.User, error) {
	hash, err := f.password()
	if err != nil {
		return nil, err
	}
	username := fmt.Sprintf("%s%d", f.faker.Username(), n)
	user := &models.User{
		Email:     fmt.Sprintf("%s@example.com", username),
		Username:  username,
		FirstName: f.faker.FirstName(),
		LastName:  f.faker.LastName(),
		Password:  hash,
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// BuildRecipe assembles an unsaved recipe for author with one or two tags and
// two to five distinct ingredients.
func (f *Factory) BuildRecipe(author *models.User, tags []models.Tag, ingredients []models.Ingredient) (*models.Recipe, []uint, []models.IngredientQuantity) {
	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        f.faker.Dinner(),
		Image:       fmt.Sprintf("https://picsum.photos/seed/%s/800/600", f.faker.UUID()),
		Text:        f.faker.Paragraph(1, 4, 12, "\n"),
		CookingTime: f.faker.Number(5, 180),
	}

	tagIDs := make([]uint, 0, 2)
	for _, i := range f.pick(len(tags), f.faker.Number(1, 2)) {
		tagIDs = append(tagIDs, tags[i].ID)
	}

	picked := f.pick(len(ingredients), f.faker.Number(2, 5))
	quantities := make([]models.IngredientQuantity, 0, len(picked))
	for _, i := range picked {
		quantities = append(quantities, models.IngredientQuantity{
			IngredientID: ingredients[i].ID,
			Amount:       f.faker.Number(1, 500),
		})
	}
	return recipe, tagIDs, quantities
}

// pick returns up to k distinct indexes below n.
func (f *Factory) pick(n, k int) []int {
	if k > n {
		k = n
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	f.faker.ShuffleInts(idx)
	return idx[:k]
}

// Result summarizes a Seed run.
type Result struct {
	Users         int
	Recipes       int
	Favorites     int
	CartItems     int
	Subscriptions int
}

// Seed generates users, recipes and random relations on top of the existing
// tags and ingredients.
func (f *Factory) Seed(ctx context.Context) (*Result, error) {
	var tags []models.Tag
	if err := f.db.WithContext(ctx).Order("id").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	var ingredients []models.Ingredient
	if err := f.db.WithContext(ctx).Order("id").Limit(1000).Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("load ingredients: %w", err)
	}
	if len(tags) == 0 || len(ingredients) < 2 {
		return nil, fmt.Errorf("seed needs tags and at least two ingredients, have %d and %d", len(tags), len(ingredients))
	}

	res := &Result{}
	users := make([]*models.User, 0, f.opts.Users)
	for i := range f.opts.Users {
		u, err := f.CreateUser(ctx, i)
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	res.Users = len(users)

	var recipeIDs []uint
	for _, u := range users {
		for range f.opts.RecipesPerUser {
			recipe, tagIDs, quantities := f.BuildRecipe(u, tags, ingredients)
			if err := f.recipes.Create(ctx, recipe, tagIDs, quantities); err != nil {
				return nil, fmt.Errorf("create recipe: %w", err)
			}
			recipeIDs = append(recipeIDs, recipe.ID)
		}
	}
	res.Recipes = len(recipeIDs)

	for _, u := range users {
		if len(recipeIDs) > 0 {
			res.Favorites += f.relate(ctx, models.RelationFavorite, u.ID, recipeIDs, f.opts.FavoritesPerUser)
			res.CartItems += f.relate(ctx, models.RelationCart, u.ID, recipeIDs, f.opts.CartPerUser)
		}
		var authors []uint
		for _, other := range users {
			if other.ID != u.ID {
				authors = append(authors, other.ID)
			}
		}
		res.Subscriptions += f.relate(ctx, models.RelationSubscription, u.ID, authors, f.opts.SubscriptionsPerUser)
	}

	middleware.Logger.InfoContext(ctx, "demo data seeded",
		slog.Int("users", res.Users),
		slog.Int("recipes", res.Recipes),
		slog.Int("favorites", res.Favorites),
		slog.Int("cart_items", res.CartItems),
		slog.Int("subscriptions", res.Subscriptions),
	)
	return res, nil
}

// relate adds up to limit random relations from userID and returns how many were created.
func (f *Factory) relate(ctx context.Context, kind models.RelationKind, userID uint, targets []uint, limit int) int {
	created := 0
	for _, i := range f.pick(len(targets), limit) {
		if err := f.relations.Add(ctx, kind, userID, targets[i]); err != nil {
			middleware.Logger.DebugContext(ctx, "skipping relation", slog.String("kind", string(kind)), slog.String("error", err.Error()))
			continue
		}
		created++
	}
	return created
}

// ClearAll removes every user-generated row, keeping tags and ingredients.
func ClearAll(ctx context.Context, db *gorm.DB) error {
	tables := []string{"favorites", "cart_items", "subscriptions", "recipe_tags", "ingredient_quantities", "recipes", "users"}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}
