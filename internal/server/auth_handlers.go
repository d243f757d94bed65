package server

import (
	"log/slog"
	"time"

	"foodgram/internal/middleware"
	"foodgram/internal/models"
	"foodgram/internal/service"

	"github.com/gofiber/fiber/v2"
)

type signupRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// Signup handles POST /api/auth/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.Signup(c.UserContext(), service.SignupInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login handles POST /api/auth/login and returns a bearer token.
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if req.Email == "" || req.Password == "" {
		return respond(c, models.NewValidationError("email and password are required"))
	}

	user, err := s.userService.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respond(c, err)
	}

	token, err := middleware.IssueToken(s.config.JWTSecret, user.ID, user.Username, s.tokenTTL())
	if err != nil {
		return respond(c, models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"auth_token": token})
}

// Logout handles POST /api/auth/logout by blacklisting the token's jti until it expires.
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, ok := c.Locals("tokenClaims").(*middleware.TokenClaims)
	if !ok || claims.JTI == "" {
		return c.SendStatus(fiber.StatusNoContent)
	}
	if s.redis == nil {
		middleware.Logger.WarnContext(c.UserContext(), "logout without redis, token stays valid until expiry")
		return c.SendStatus(fiber.StatusNoContent)
	}

	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return c.SendStatus(fiber.StatusNoContent)
	}
	if err := s.redis.Set(c.UserContext(), middleware.BlacklistKey(claims.JTI), "1", ttl).Err(); err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "failed to revoke token", slog.String("error", err.Error()))
		return respond(c, models.NewInternalError(err))
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetPassword handles POST /api/users/set_password
func (s *Server) SetPassword(c *fiber.Ctx) error {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	err := s.userService.ChangePassword(c.UserContext(), service.ChangePasswordInput{
		UserID:          currentUserID(c),
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) tokenTTL() time.Duration {
	if s.config.JWTTTLHours <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(s.config.JWTTTLHours) * time.Hour
}
