package server

import (
	"agora/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// SearchUsers handles GET /api/users/search?q=...&page=N
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	users, err := s.userService.SearchUsers(c.UserContext(), c.Query("q"), parsePage(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetSuggestions handles GET /api/users/suggestions
func (s *Server) GetSuggestions(c *fiber.Ctx) error {
	users, err := s.followService.Suggestions(c.UserContext(), middleware.ViewerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	profile, err := s.userService.GetProfile(c.UserContext(), middleware.ViewerID(c), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// GetFollowers handles GET /api/users/:id/followers?limit=N
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ids, err := s.followService.FollowerIDs(c.UserContext(), userID, c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"follower_ids": ids})
}

// Follow handles POST /api/users/:id/follow
func (s *Server) Follow(c *fiber.Ctx) error {
	followeeID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	viewerID := middleware.ViewerID(c)
	if err := s.followService.Follow(c.UserContext(), viewerID, followeeID); err != nil {
		return respondError(c, err)
	}
	return s.followState(c, viewerID, followeeID)
}

// Unfollow handles DELETE /api/users/:id/follow
func (s *Server) Unfollow(c *fiber.Ctx) error {
	followeeID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	viewerID := middleware.ViewerID(c)
	if err := s.followService.Unfollow(c.UserContext(), viewerID, followeeID); err != nil {
		return respondError(c, err)
	}
	return s.followState(c, viewerID, followeeID)
}

func (s *Server) followState(c *fiber.Ctx, viewerID, otherID uint) error {
	profile, err := s.userService.GetProfile(c.UserContext(), viewerID, otherID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"is_following": profile.IsFollowing,
		"is_mutual":    profile.IsMutual,
	})
}
