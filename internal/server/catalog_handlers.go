package server

import (
	"github.com/gofiber/fiber/v2"
)

// ListTags handles GET /api/tags
func (s *Server) ListTags(c *fiber.Ctx) error {
	tags, err := s.catalogService.ListTags(c.UserContext())
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(tags)
}

// GetTag handles GET /api/tags/:id
func (s *Server) GetTag(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	tag, err := s.catalogService.GetTag(c.UserContext(), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(tag)
}

// ListIngredients handles GET /api/ingredients?name=<prefix>
func (s *Server) ListIngredients(c *fiber.Ctx) error {
	items, err := s.catalogService.SearchIngredients(c.UserContext(), c.Query("name"))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(items)
}

// GetIngredient handles GET /api/ingredients/:id
func (s *Server) GetIngredient(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	item, err := s.catalogService.GetIngredient(c.UserContext(), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(item)
}
