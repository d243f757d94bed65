// Package service holds the business logic between HTTP handlers and repositories.
package service

import (
	"context"

	"foodgram/internal/models"
	"foodgram/internal/repository"

	"golang.org/x/sync/errgroup"
)

// maxAuthorFetches bounds concurrent recent-recipe queries for one page of authors.
const maxAuthorFetches = 4

// authorProjector builds UserWithRecipes views for a page of authors.
type authorProjector struct {
	recipes   repository.RecipeRepository
	relations repository.RelationRepository
}

// project returns one view per author, in input order. Each view carries at
// most recipeLimit recent recipes (all when recipeLimit <= 0), the author's
// total recipe count and whether viewerID follows them.
func (p authorProjector) project(ctx context.Context, viewerID uint, authors []models.User, recipeLimit int) ([]models.UserWithRecipes, error) {
	out := make([]models.UserWithRecipes, len(authors))
	if len(authors) == 0 {
		return out, nil
	}
	ids := make([]uint, len(authors))
	for i := range authors {
		ids[i] = authors[i].ID
	}

	var (
		counts     map[uint]int64
		subscribed map[uint]bool
		recent     = make([][]models.RecipeShort, len(authors))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxAuthorFetches)
	g.Go(func() error {
		var err error
		counts, err = p.recipes.CountByAuthors(gctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		subscribed, err = p.relations.TargetIDs(gctx, models.RelationSubscription, viewerID, ids)
		return err
	})
	for i, id := range ids {
		g.Go(func() error {
			short, err := p.recipes.ShortByAuthor(gctx, id, recipeLimit)
			if err != nil {
				return err
			}
			recent[i] = short
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range authors {
		view := models.UserWithRecipes{
			UserView:     models.ViewOfUser(&authors[i]),
			Recipes:      recent[i],
			RecipesCount: counts[authors[i].ID],
		}
		if view.Recipes == nil {
			view.Recipes = []models.RecipeShort{}
		}
		view.IsSubscribed = subscribed[authors[i].ID]
		out[i] = view
	}
	return out, nil
}
