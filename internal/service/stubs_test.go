package service

import (
	"context"

	"foodgram/internal/models"
	"foodgram/internal/repository"
)

type recipeRepoStub struct {
	getByIDFn        func(context.Context, uint) (*models.Recipe, error)
	getShortFn       func(context.Context, uint) (*models.RecipeShort, error)
	getAuthorIDFn    func(context.Context, uint) (uint, error)
	listFn           func(context.Context, repository.RecipeFilter) ([]models.Recipe, int64, error)
	createFn         func(context.Context, *models.Recipe, []uint, []models.IngredientQuantity) error
	updateFn         func(context.Context, uint, repository.RecipeChanges, []uint, []models.IngredientQuantity) error
	deleteFn         func(context.Context, uint) error
	shortByAuthorFn  func(context.Context, uint, int) ([]models.RecipeShort, error)
	countByAuthorsFn func(context.Context, []uint) (map[uint]int64, error)
}

func (s *recipeRepoStub) GetByID(ctx context.Context, id uint) (*models.Recipe, error) {
	return s.getByIDFn(ctx, id)
}
func (s *recipeRepoStub) GetShort(ctx context.Context, id uint) (*models.RecipeShort, error) {
	return s.getShortFn(ctx, id)
}
func (s *recipeRepoStub) GetAuthorID(ctx context.Context, id uint) (uint, error) {
	return s.getAuthorIDFn(ctx, id)
}
func (s *recipeRepoStub) List(ctx context.Context, f repository.RecipeFilter) ([]models.Recipe, int64, error) {
	return s.listFn(ctx, f)
}
func (s *recipeRepoStub) Create(ctx context.Context, r *models.Recipe, tags []uint, qs []models.IngredientQuantity) error {
	return s.createFn(ctx, r, tags, qs)
}
func (s *recipeRepoStub) Update(ctx context.Context, id uint, c repository.RecipeChanges, tags []uint, qs []models.IngredientQuantity) error {
	return s.updateFn(ctx, id, c, tags, qs)
}
func (s *recipeRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *recipeRepoStub) ShortByAuthor(ctx context.Context, authorID uint, limit int) ([]models.RecipeShort, error) {
	return s.shortByAuthorFn(ctx, authorID, limit)
}
func (s *recipeRepoStub) CountByAuthors(ctx context.Context, ids []uint) (map[uint]int64, error) {
	return s.countByAuthorsFn(ctx, ids)
}

type relationRepoStub struct {
	addFn       func(context.Context, models.RelationKind, uint, uint) error
	removeFn    func(context.Context, models.RelationKind, uint, uint) error
	existsFn    func(context.Context, models.RelationKind, uint, uint) (bool, error)
	targetIDsFn func(context.Context, models.RelationKind, uint, []uint) (map[uint]bool, error)
}

func (s *relationRepoStub) Add(ctx context.Context, k models.RelationKind, u, t uint) error {
	return s.addFn(ctx, k, u, t)
}
func (s *relationRepoStub) Remove(ctx context.Context, k models.RelationKind, u, t uint) error {
	return s.removeFn(ctx, k, u, t)
}
func (s *relationRepoStub) Exists(ctx context.Context, k models.RelationKind, u, t uint) (bool, error) {
	return s.existsFn(ctx, k, u, t)
}
func (s *relationRepoStub) TargetIDs(ctx context.Context, k models.RelationKind, u uint, c []uint) (map[uint]bool, error) {
	return s.targetIDsFn(ctx, k, u, c)
}

type userRepoStub struct {
	getByIDFn        func(context.Context, uint) (*models.User, error)
	getByEmailFn     func(context.Context, string) (*models.User, error)
	getByUsernameFn  func(context.Context, string) (*models.User, error)
	createFn         func(context.Context, *models.User) error
	updatePasswordFn func(context.Context, uint, string) error
	listFn           func(context.Context, int, int) ([]models.User, int64, error)
	listFollowedFn   func(context.Context, uint, int, int) ([]models.User, int64, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return s.updatePasswordFn(ctx, id, hash)
}
func (s *userRepoStub) List(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	return s.listFn(ctx, page, limit)
}
func (s *userRepoStub) ListFollowed(ctx context.Context, userID uint, page, limit int) ([]models.User, int64, error) {
	return s.listFollowedFn(ctx, userID, page, limit)
}

type shoppingListRepoStub struct {
	cartLinesFn       func(context.Context, uint) ([]models.ShoppingListLine, error)
	aggregatedLinesFn func(context.Context, uint) ([]models.ShoppingListLine, error)
}

func (s *shoppingListRepoStub) CartLines(ctx context.Context, userID uint) ([]models.ShoppingListLine, error) {
	return s.cartLinesFn(ctx, userID)
}
func (s *shoppingListRepoStub) AggregatedLines(ctx context.Context, userID uint) ([]models.ShoppingListLine, error) {
	return s.aggregatedLinesFn(ctx, userID)
}

type ingredientRepoStub struct {
	searchFn     func(context.Context, string) ([]models.Ingredient, error)
	getByIDFn    func(context.Context, uint) (*models.Ingredient, error)
	bulkInsertFn func(context.Context, []models.Ingredient, int) (int64, error)
}

func (s *ingredientRepoStub) Search(ctx context.Context, query string) ([]models.Ingredient, error) {
	return s.searchFn(ctx, query)
}
func (s *ingredientRepoStub) GetByID(ctx context.Context, id uint) (*models.Ingredient, error) {
	return s.getByIDFn(ctx, id)
}
func (s *ingredientRepoStub) BulkInsert(ctx context.Context, items []models.Ingredient, batch int) (int64, error) {
	return s.bulkInsertFn(ctx, items, batch)
}

type tagRepoStub struct {
	listFn    func(context.Context) ([]models.Tag, error)
	getByIDFn func(context.Context, uint) (*models.Tag, error)
	upsertFn  func(context.Context, []models.Tag) (int64, error)
}

func (s *tagRepoStub) List(ctx context.Context) ([]models.Tag, error) { return s.listFn(ctx) }
func (s *tagRepoStub) GetByID(ctx context.Context, id uint) (*models.Tag, error) {
	return s.getByIDFn(ctx, id)
}
func (s *tagRepoStub) Upsert(ctx context.Context, tags []models.Tag) (int64, error) {
	return s.upsertFn(ctx, tags)
}

// noRelations answers every flag lookup with "not related".
func noRelations() *relationRepoStub {
	return &relationRepoStub{
		addFn:    func(context.Context, models.RelationKind, uint, uint) error { return nil },
		removeFn: func(context.Context, models.RelationKind, uint, uint) error { return nil },
		existsFn: func(context.Context, models.RelationKind, uint, uint) (bool, error) { return false, nil },
		targetIDsFn: func(context.Context, models.RelationKind, uint, []uint) (map[uint]bool, error) {
			return map[uint]bool{}, nil
		},
	}
}

// authorRecipes serves projections for authors with n recipes each.
func authorRecipes(n int) *recipeRepoStub {
	return &recipeRepoStub{
		shortByAuthorFn: func(_ context.Context, authorID uint, limit int) ([]models.RecipeShort, error) {
			out := []models.RecipeShort{}
			for i := 0; i < n && (limit <= 0 || i < limit); i++ {
				out = append(out, models.RecipeShort{ID: authorID*100 + uint(i), Name: "r"})
			}
			return out, nil
		},
		countByAuthorsFn: func(_ context.Context, ids []uint) (map[uint]int64, error) {
			out := map[uint]int64{}
			for _, id := range ids {
				out[id] = int64(n)
			}
			return out, nil
		},
	}
}
