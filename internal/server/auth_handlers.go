package server

import (
	"strings"

	"kindler/internal/models"
	"kindler/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Signup handles POST /api/auth/signup. The new account is logged in
// immediately, so the response carries a token pair alongside the profile.
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Username  string `json:"username"`
		Password  string `json:"password"`
		Nickname  string `json:"nickname"`
		BirthDate string `json:"birth_date"`
		Gender    string `json:"gender"`
		Bio       string `json:"bio"`
		Location  string `json:"location"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Username:  req.Username,
		Password:  req.Password,
		Nickname:  req.Nickname,
		BirthDate: req.BirthDate,
		Gender:    req.Gender,
		Bio:       req.Bio,
		Location:  req.Location,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	pair, _, err := s.userService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":          user,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	pair, user, err := s.userService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"user":          user,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// Refresh handles POST /api/auth/refresh. The presented refresh token is
// rotated: it is revoked and a fresh pair is returned.
func (s *Server) Refresh(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("refresh_token is required"))
	}

	pair, err := s.userService.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(pair)
}

// Logout handles POST /api/auth/logout. The bearer access token is
// blacklisted for its remaining lifetime and the refresh token, when
// supplied in the body, is revoked.
func (s *Server) Logout(c *fiber.Ctx) error {
	accessToken := bearerToken(c)
	if accessToken == "" {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	// The body is optional; logout still works on the access token alone.
	_ = c.BodyParser(&req)

	if err := s.userService.Logout(c.UserContext(), accessToken, req.RefreshToken); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Logged out",
	})
}

// bearerToken extracts the raw token from the Authorization header.
func bearerToken(c *fiber.Ctx) string {
	parts := strings.Split(c.Get("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
