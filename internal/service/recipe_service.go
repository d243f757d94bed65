package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"foodgram/internal/cache"
	"foodgram/internal/featureflags"
	"foodgram/internal/middleware"
	"foodgram/internal/models"
	"foodgram/internal/observability"
	"foodgram/internal/repository"
	"foodgram/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// RecipeService composes recipes and serves viewer-specific recipe views.
type RecipeService struct {
	recipes   repository.RecipeRepository
	relations repository.RelationRepository
	flags     *featureflags.Manager
	cacheTTL  time.Duration
}

// IngredientLine is one (ingredient, amount) pair of a recipe payload.
type IngredientLine struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

type CreateRecipeInput struct {
	AuthorID    uint
	Name        string
	Image       string
	Text        string
	CookingTime int
	Tags        []uint
	Ingredients []IngredientLine
}

// UpdateRecipeInput leaves nil fields unchanged. Non-empty Tags and
// Ingredients replace the current sets; empty ones are ignored.
type UpdateRecipeInput struct {
	RecipeID    uint
	UserID      uint
	Name        *string
	Image       *string
	Text        *string
	CookingTime *int
	Tags        *[]uint
	Ingredients *[]IngredientLine
}

type ListRecipesInput struct {
	ViewerID         uint
	AuthorID         uint
	Tags             []string
	IsFavorited      bool
	IsInShoppingCart bool
	Page             int
	Limit            int
}

// NewRecipeService returns a new RecipeService.
func NewRecipeService(
	recipes repository.RecipeRepository,
	relations repository.RelationRepository,
	flags *featureflags.Manager,
	cacheTTL time.Duration,
) *RecipeService {
	if cacheTTL <= 0 {
		cacheTTL = cache.RecipeTTL
	}
	return &RecipeService{recipes: recipes, relations: relations, flags: flags, cacheTTL: cacheTTL}
}

func validateTags(tags []uint) error {
	if len(tags) == 0 {
		return models.NewValidationError("select at least one tag")
	}
	return nil
}

func validateIngredients(lines []IngredientLine) ([]models.IngredientQuantity, error) {
	if len(lines) == 0 {
		return nil, models.NewValidationError("specify at least one ingredient")
	}
	seen := make(map[uint]struct{}, len(lines))
	out := make([]models.IngredientQuantity, 0, len(lines))
	for _, line := range lines {
		if err := validation.ValidateAmount(line.Amount); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if _, dup := seen[line.ID]; dup {
			return nil, models.NewValidationError("ingredients must not repeat")
		}
		seen[line.ID] = struct{}{}
		out = append(out, models.IngredientQuantity{IngredientID: line.ID, Amount: line.Amount})
	}
	return out, nil
}

func validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return models.NewValidationError("text is required")
	}
	return nil
}

func validateScalars(name, text *string, cookingTime *int) error {
	if name != nil {
		if err := validation.ValidateRecipeName(*name); err != nil {
			return models.NewValidationError(err.Error())
		}
	}
	if text != nil {
		if err := validateText(*text); err != nil {
			return err
		}
	}
	if cookingTime != nil {
		if err := validation.ValidateCookingTime(*cookingTime); err != nil {
			return models.NewValidationError(err.Error())
		}
	}
	return nil
}

// Create validates the payload and stores the recipe with its tags and
// ingredient quantities in one transaction.
func (s *RecipeService) Create(ctx context.Context, in CreateRecipeInput) (view *models.RecipeView, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "CreateRecipe")
	defer func() {
		observability.RecipeWrites.WithLabelValues("create", observability.Outcome(err)).Inc()
		observability.EndSpan(span, err)
	}()

	if err := validateTags(in.Tags); err != nil {
		return nil, err
	}
	quantities, err := validateIngredients(in.Ingredients)
	if err != nil {
		return nil, err
	}
	if err := validateScalars(&in.Name, &in.Text, &in.CookingTime); err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		AuthorID:    in.AuthorID,
		Name:        strings.TrimSpace(in.Name),
		Image:       in.Image,
		Text:        in.Text,
		CookingTime: in.CookingTime,
	}
	if err := s.recipes.Create(ctx, recipe, in.Tags, quantities); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "recipe created", slog.Uint64("recipe_id", uint64(recipe.ID)))
	return s.Get(ctx, in.AuthorID, recipe.ID)
}

// Update applies a partial update. Only the author may update a recipe.
func (s *RecipeService) Update(ctx context.Context, in UpdateRecipeInput) (view *models.RecipeView, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "UpdateRecipe", attribute.Int("recipe.id", int(in.RecipeID)))
	defer func() {
		observability.RecipeWrites.WithLabelValues("update", observability.Outcome(err)).Inc()
		observability.EndSpan(span, err)
	}()

	if err := s.authorize(ctx, in.RecipeID, in.UserID); err != nil {
		return nil, err
	}

	var tags []uint
	if in.Tags != nil && len(*in.Tags) > 0 {
		tags = *in.Tags
	}
	var quantities []models.IngredientQuantity
	if in.Ingredients != nil && len(*in.Ingredients) > 0 {
		if quantities, err = validateIngredients(*in.Ingredients); err != nil {
			return nil, err
		}
	}
	if err := validateScalars(in.Name, in.Text, in.CookingTime); err != nil {
		return nil, err
	}

	changes := repository.RecipeChanges{
		Name:        in.Name,
		Image:       in.Image,
		Text:        in.Text,
		CookingTime: in.CookingTime,
	}
	if changes.Name != nil {
		trimmed := strings.TrimSpace(*changes.Name)
		changes.Name = &trimmed
	}
	cache.InvalidateRecipe(ctx, in.RecipeID)
	if err := s.recipes.Update(ctx, in.RecipeID, changes, tags, quantities); err != nil {
		return nil, err
	}
	// A read racing the commit may have refilled the entry with the old row.
	cache.InvalidateRecipe(ctx, in.RecipeID)

	return s.Get(ctx, in.UserID, in.RecipeID)
}

// Delete removes a recipe and everything attached to it. Only the author may delete.
func (s *RecipeService) Delete(ctx context.Context, userID, recipeID uint) (err error) {
	ctx, span := observability.StartSpan(ctx, "service", "DeleteRecipe", attribute.Int("recipe.id", int(recipeID)))
	defer func() {
		observability.RecipeWrites.WithLabelValues("delete", observability.Outcome(err)).Inc()
		observability.EndSpan(span, err)
	}()

	if err := s.authorize(ctx, recipeID, userID); err != nil {
		return err
	}
	cache.InvalidateRecipe(ctx, recipeID)
	if err := s.recipes.Delete(ctx, recipeID); err != nil {
		return err
	}
	cache.InvalidateRecipe(ctx, recipeID)
	middleware.Logger.InfoContext(ctx, "recipe deleted", slog.Uint64("recipe_id", uint64(recipeID)))
	return nil
}

func (s *RecipeService) authorize(ctx context.Context, recipeID, userID uint) error {
	authorID, err := s.recipes.GetAuthorID(ctx, recipeID)
	if err != nil {
		return err
	}
	if authorID != userID {
		return models.NewForbiddenError("only the author can change this recipe")
	}
	return nil
}

// Get returns the recipe as seen by viewerID (0 for anonymous).
func (s *RecipeService) Get(ctx context.Context, viewerID, recipeID uint) (*models.RecipeView, error) {
	var view models.RecipeView
	fetch := func() error {
		recipe, err := s.recipes.GetByID(ctx, recipeID)
		if err != nil {
			return err
		}
		view = models.ViewOfRecipe(recipe)
		return nil
	}

	var err error
	if s.flags.Enabled(featureflags.RecipeCache, viewerID) {
		err = cache.Aside(ctx, cache.RecipeKey(recipeID), &view, s.cacheTTL, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		return nil, err
	}

	views := []models.RecipeView{view}
	if err := s.decorate(ctx, viewerID, views); err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns one page of recipes matching the filter, newest first.
// Favorite and cart filters apply to authenticated viewers only.
func (s *RecipeService) List(ctx context.Context, in ListRecipesInput) (*models.Page[models.RecipeView], error) {
	filter := repository.RecipeFilter{
		AuthorID: in.AuthorID,
		TagSlugs: in.Tags,
		Page:     in.Page,
		Limit:    in.Limit,
	}
	if in.ViewerID != 0 {
		if in.IsFavorited {
			filter.FavoritedBy = in.ViewerID
		}
		if in.IsInShoppingCart {
			filter.InCartOf = in.ViewerID
		}
	}

	recipes, total, err := s.recipes.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]models.RecipeView, 0, len(recipes))
	for i := range recipes {
		views = append(views, models.ViewOfRecipe(&recipes[i]))
	}
	if err := s.decorate(ctx, in.ViewerID, views); err != nil {
		return nil, err
	}
	return &models.Page[models.RecipeView]{Count: total, Results: views}, nil
}

// decorate fills the viewer-specific flags of views in place.
func (s *RecipeService) decorate(ctx context.Context, viewerID uint, views []models.RecipeView) error {
	if viewerID == 0 || len(views) == 0 {
		return nil
	}
	recipeIDs := make([]uint, 0, len(views))
	authorIDs := make([]uint, 0, len(views))
	for _, v := range views {
		recipeIDs = append(recipeIDs, v.ID)
		authorIDs = append(authorIDs, v.Author.ID)
	}

	favorites, err := s.relations.TargetIDs(ctx, models.RelationFavorite, viewerID, recipeIDs)
	if err != nil {
		return err
	}
	cart, err := s.relations.TargetIDs(ctx, models.RelationCart, viewerID, recipeIDs)
	if err != nil {
		return err
	}
	following, err := s.relations.TargetIDs(ctx, models.RelationSubscription, viewerID, authorIDs)
	if err != nil {
		return err
	}

	for i := range views {
		views[i].IsFavorited = favorites[views[i].ID]
		views[i].IsInShoppingCart = cart[views[i].ID]
		views[i].Author.IsSubscribed = following[views[i].Author.ID]
	}
	return nil
}
