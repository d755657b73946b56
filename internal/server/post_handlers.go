package server

import (
	"agora/internal/middleware"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts?mode=discover|following&page=N
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page, err := s.feedService.ListFeed(c.UserContext(), service.FeedRequest{
		ViewerID: middleware.ViewerID(c),
		Mode:     service.FeedMode(c.Query("mode", string(service.FeedDiscover))),
		Query:    c.Query("q"),
		Page:     parsePage(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// SearchPosts handles GET /api/posts/search?q=...&page=N. A blank query returns
// an empty page.
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	page, err := s.feedService.ListFeed(c.UserContext(), service.FeedRequest{
		ViewerID: middleware.ViewerID(c),
		Mode:     service.FeedSearch,
		Query:    c.Query("q"),
		Page:     parsePage(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// GetThemes handles GET /api/themes
func (s *Server) GetThemes(c *fiber.Ctx) error {
	themes, err := s.postService.ListThemes(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(themes)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.feedService.GetPost(c.UserContext(), middleware.ViewerID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	ownerID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	page, err := s.feedService.ListUserPosts(c.UserContext(), middleware.ViewerID(c), ownerID, parsePage(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Title      string `json:"title"`
		Content    string `json:"content"`
		CoverImage string `json:"cover_image"`
		ThemeID    uint   `json:"theme_id"`
		IsPublic   *bool  `json:"is_public"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	public := true
	if req.IsPublic != nil {
		public = *req.IsPublic
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:     middleware.ViewerID(c),
		Title:      req.Title,
		Content:    req.Content,
		CoverImage: req.CoverImage,
		ThemeID:    req.ThemeID,
		IsPublic:   public,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// SharePost handles POST /api/posts/:id/share
func (s *Server) SharePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Caption  string `json:"caption"`
		IsPublic *bool  `json:"is_public"`
	}
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return nil
		}
	}
	public := true
	if req.IsPublic != nil {
		public = *req.IsPublic
	}

	share, err := s.postService.SharePost(c.UserContext(), service.SharePostInput{
		UserID:   middleware.ViewerID(c),
		PostID:   postID,
		Caption:  req.Caption,
		IsPublic: public,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(share)
}

// UpdatePost handles PUT /api/posts/:id. Omitted fields keep their value.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title      *string `json:"title"`
		Content    *string `json:"content"`
		CoverImage *string `json:"cover_image"`
		ThemeID    *uint   `json:"theme_id"`
		IsPublic   *bool   `json:"is_public"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID:     middleware.ViewerID(c),
		PostID:     postID,
		Title:      req.Title,
		Content:    req.Content,
		CoverImage: req.CoverImage,
		ThemeID:    req.ThemeID,
		IsPublic:   req.IsPublic,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), middleware.ViewerID(c), postID); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Post deleted"})
}

// ToggleLike handles POST /api/posts/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.postService.ToggleLike(c.UserContext(), middleware.ViewerID(c), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
