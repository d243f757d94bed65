package server

import (
	"github.com/gofiber/fiber/v2"
)

// ListUsers handles GET /api/users
func (s *Server) ListUsers(c *fiber.Ctx) error {
	pg := parsePagination(c, s.config.PageSize)
	page, err := s.userService.List(c.UserContext(), currentUserID(c), pg.Page, pg.Limit)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(newPageResponse(c, page, pg))
}

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := currentUserID(c)
	user, err := s.userService.GetProfile(c.UserContext(), userID, userID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.userService.GetProfile(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(user)
}

// ListSubscriptions handles GET /api/users/subscriptions?recipes_limit=N
func (s *Server) ListSubscriptions(c *fiber.Ctx) error {
	pg := parsePagination(c, s.config.PageSize)
	page, err := s.userService.ListSubscriptions(c.UserContext(), currentUserID(c),
		c.QueryInt("recipes_limit", 0), pg.Page, pg.Limit)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(newPageResponse(c, page, pg))
}
