package server

import (
	"foodgram/internal/service"

	"github.com/gofiber/fiber/v2"
)

type recipeRequest struct {
	Name        *string                   `json:"name"`
	Image       *string                   `json:"image"`
	Text        *string                   `json:"text"`
	CookingTime *int                      `json:"cooking_time"`
	Tags        *[]uint                   `json:"tags"`
	Ingredients *[]service.IngredientLine `json:"ingredients"`
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// ListRecipes handles GET /api/recipes
// Query: page, limit, author, tags (repeatable slug), is_favorited, is_in_shopping_cart.
func (s *Server) ListRecipes(c *fiber.Ctx) error {
	pg := parsePagination(c, s.config.PageSize)

	var tags []string
	for _, raw := range c.Context().QueryArgs().PeekMulti("tags") {
		if len(raw) > 0 {
			tags = append(tags, string(raw))
		}
	}

	authorID := c.QueryInt("author", 0)
	if authorID < 0 {
		authorID = 0
	}

	page, err := s.recipeService.List(c.UserContext(), service.ListRecipesInput{
		ViewerID:         currentUserID(c),
		AuthorID:         uint(authorID),
		Tags:             tags,
		IsFavorited:      c.QueryBool("is_favorited"),
		IsInShoppingCart: c.QueryBool("is_in_shopping_cart"),
		Page:             pg.Page,
		Limit:            pg.Limit,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(newPageResponse(c, page, pg))
}

// GetRecipe handles GET /api/recipes/:id
func (s *Server) GetRecipe(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	view, err := s.recipeService.Get(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(view)
}

// CreateRecipe handles POST /api/recipes
func (s *Server) CreateRecipe(c *fiber.Ctx) error {
	var req recipeRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	view, err := s.recipeService.Create(c.UserContext(), service.CreateRecipeInput{
		AuthorID:    currentUserID(c),
		Name:        deref(req.Name),
		Image:       deref(req.Image),
		Text:        deref(req.Text),
		CookingTime: deref(req.CookingTime),
		Tags:        deref(req.Tags),
		Ingredients: deref(req.Ingredients),
	})
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// UpdateRecipe handles PATCH /api/recipes/:id. Omitted fields are left unchanged.
func (s *Server) UpdateRecipe(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req recipeRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	view, err := s.recipeService.Update(c.UserContext(), service.UpdateRecipeInput{
		RecipeID:    id,
		UserID:      currentUserID(c),
		Name:        req.Name,
		Image:       req.Image,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Tags:        req.Tags,
		Ingredients: req.Ingredients,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(view)
}

// DeleteRecipe handles DELETE /api/recipes/:id
func (s *Server) DeleteRecipe(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.recipeService.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DownloadShoppingCart handles GET /api/recipes/download_shopping_cart
func (s *Server) DownloadShoppingCart(c *fiber.Ctx) error {
	list, err := s.shoppingListService.Download(c.UserContext(), currentUserID(c))
	if err != nil {
		return respond(c, err)
	}
	c.Attachment(list.Filename)
	c.Set(fiber.HeaderContentType, list.ContentType)
	return c.Send(list.Body)
}
