package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"foodgram/internal/middleware"
	"foodgram/internal/models"
	"foodgram/internal/observability"
	"foodgram/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// RelationService toggles favorites, cart items and subscriptions.
type RelationService struct {
	relations    repository.RelationRepository
	recipes      repository.RecipeRepository
	users        repository.UserRepository
	authors      authorProjector
	recipesLimit int
}

// NewRelationService returns a new RelationService. recipesLimit caps the
// recent recipes embedded in a subscription result.
func NewRelationService(
	relations repository.RelationRepository,
	recipes repository.RecipeRepository,
	users repository.UserRepository,
	recipesLimit int,
) *RelationService {
	if recipesLimit <= 0 {
		recipesLimit = defaultRecipesLimit
	}
	return &RelationService{
		relations:    relations,
		recipes:      recipes,
		users:        users,
		authors:      authorProjector{recipes: recipes, relations: relations},
		recipesLimit: recipesLimit,
	}
}

func toggleOutcome(err error) string {
	if err == nil {
		return "ok"
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return strings.ToLower(appErr.Code)
	}
	return "error"
}

// Add creates the (user, target) relation and returns it with a projection of
// the target.
func (s *RelationService) Add(ctx context.Context, kind models.RelationKind, userID, targetID uint) (result *models.RelationResult, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "AddRelation",
		attribute.String("relation.kind", string(kind)),
		attribute.Int("relation.target_id", int(targetID)),
	)
	defer func() {
		observability.RelationToggles.WithLabelValues(string(kind), "add", toggleOutcome(err)).Inc()
		observability.EndSpan(span, err)
	}()

	if !kind.Valid() {
		return nil, models.NewValidationError("unknown relation kind")
	}

	result = &models.RelationResult{Kind: kind, UserID: userID, TargetID: targetID}
	var author *models.User
	if kind.TargetsRecipe() {
		short, err := s.recipes.GetShort(ctx, targetID)
		if err != nil {
			return nil, err
		}
		result.Recipe = short
	} else {
		if targetID == userID {
			return nil, models.NewInvalidOperationError("cannot subscribe to yourself")
		}
		author, err = s.users.GetByID(ctx, targetID)
		if err != nil {
			return nil, err
		}
	}

	if err := s.relations.Add(ctx, kind, userID, targetID); err != nil {
		return nil, err
	}

	if author != nil {
		views, err := s.authors.project(ctx, userID, []models.User{*author}, s.recipesLimit)
		if err != nil {
			return nil, err
		}
		result.Author = &views[0]
	}

	middleware.Logger.InfoContext(ctx, "relation added",
		slog.String("kind", string(kind)),
		slog.Uint64("target_id", uint64(targetID)),
	)
	return result, nil
}

// Remove deletes the (user, target) relation.
func (s *RelationService) Remove(ctx context.Context, kind models.RelationKind, userID, targetID uint) (err error) {
	ctx, span := observability.StartSpan(ctx, "service", "RemoveRelation",
		attribute.String("relation.kind", string(kind)),
		attribute.Int("relation.target_id", int(targetID)),
	)
	defer func() {
		observability.RelationToggles.WithLabelValues(string(kind), "remove", toggleOutcome(err)).Inc()
		observability.EndSpan(span, err)
	}()

	if !kind.Valid() {
		return models.NewValidationError("unknown relation kind")
	}
	if kind.TargetsRecipe() {
		if _, err := s.recipes.GetShort(ctx, targetID); err != nil {
			return err
		}
	} else if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return err
	}
	return s.relations.Remove(ctx, kind, userID, targetID)
}

// AddFavorite marks a recipe as favorite.
func (s *RelationService) AddFavorite(ctx context.Context, userID, recipeID uint) (*models.RecipeShort, error) {
	res, err := s.Add(ctx, models.RelationFavorite, userID, recipeID)
	if err != nil {
		return nil, err
	}
	return res.Recipe, nil
}

// RemoveFavorite unmarks a favorite recipe.
func (s *RelationService) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	return s.Remove(ctx, models.RelationFavorite, userID, recipeID)
}

// AddCartItem puts a recipe into the shopping cart.
func (s *RelationService) AddCartItem(ctx context.Context, userID, recipeID uint) (*models.RecipeShort, error) {
	res, err := s.Add(ctx, models.RelationCart, userID, recipeID)
	if err != nil {
		return nil, err
	}
	return res.Recipe, nil
}

// RemoveCartItem takes a recipe out of the shopping cart.
func (s *RelationService) RemoveCartItem(ctx context.Context, userID, recipeID uint) error {
	return s.Remove(ctx, models.RelationCart, userID, recipeID)
}

// Subscribe follows an author.
func (s *RelationService) Subscribe(ctx context.Context, userID, authorID uint) (*models.UserWithRecipes, error) {
	res, err := s.Add(ctx, models.RelationSubscription, userID, authorID)
	if err != nil {
		return nil, err
	}
	return res.Author, nil
}

// Unsubscribe stops following an author.
func (s *RelationService) Unsubscribe(ctx context.Context, userID, authorID uint) error {
	return s.Remove(ctx, models.RelationSubscription, userID, authorID)
}
