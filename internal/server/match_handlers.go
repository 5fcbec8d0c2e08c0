package server

import (
	"kindler/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetNextCandidate handles GET /api/matches/next. A card with user_id 0
// means the candidate pool is exhausted.
func (s *Server) GetNextCandidate(c *fiber.Ctx) error {
	card, err := s.matchService.NextCandidate(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(card)
}

// Swipe handles POST /api/matches/:userId/swipe. The body carries the
// decision: {"status": "like"} or {"status": "pass"}.
func (s *Server) Swipe(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	match, err := s.matchService.UpdateStatus(c.UserContext(), currentUserID(c), targetID, models.SwipeStatus(req.Status))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"match":  match,
		"mutual": match.IsMutualLike(),
	})
}

// GetFriends handles GET /api/friends and returns the enriched friend list.
func (s *Server) GetFriends(c *fiber.Ctx) error {
	entries, err := s.matchService.Friends(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(entries)
}

// GetFriendshipStatus handles GET /api/friends/status/:userId
func (s *Server) GetFriendshipStatus(c *fiber.Ctx) error {
	otherID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	friends, err := s.matchService.IsFriend(c.UserContext(), currentUserID(c), otherID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"friends": friends,
	})
}
