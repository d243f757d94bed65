package server

import (
	"github.com/gofiber/fiber/v2"
)

// AddFavorite handles POST /api/recipes/:id/favorite
func (s *Server) AddFavorite(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	short, err := s.relationService.AddFavorite(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(short)
}

// RemoveFavorite handles DELETE /api/recipes/:id/favorite
func (s *Server) RemoveFavorite(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.relationService.RemoveFavorite(c.UserContext(), currentUserID(c), id); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddToShoppingCart handles POST /api/recipes/:id/shopping_cart
func (s *Server) AddToShoppingCart(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	short, err := s.relationService.AddCartItem(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(short)
}

// RemoveFromShoppingCart handles DELETE /api/recipes/:id/shopping_cart
func (s *Server) RemoveFromShoppingCart(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.relationService.RemoveCartItem(c.UserContext(), currentUserID(c), id); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Subscribe handles POST /api/users/:id/subscribe
func (s *Server) Subscribe(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	author, err := s.relationService.Subscribe(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(author)
}

// Unsubscribe handles DELETE /api/users/:id/subscribe
func (s *Server) Unsubscribe(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.relationService.Unsubscribe(c.UserContext(), currentUserID(c), id); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
