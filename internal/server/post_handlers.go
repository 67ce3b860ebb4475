package server

import (
	"aviary/internal/models"
	"aviary/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text"`
		Img  string `json:"img"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID: currentUserID(c),
		Text:   req.Text,
		Img:    req.Img,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), currentUserID(c), postID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}

// LikeUnlikePost handles POST /api/posts/like/:id. It responds with the
// post's liker IDs after the toggle so clients can render the new state
// without a refetch.
func (s *Server) LikeUnlikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	likerIDs, err := s.postService.ToggleLike(c.Context(), currentUserID(c), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(likerIDs)
}

// CommentOnPost handles POST /api/posts/comment/:id
func (s *Server) CommentOnPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.postService.AddComment(c.Context(), currentUserID(c), postID, req.Text)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetAllPosts handles GET /api/posts/all
func (s *Server) GetAllPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	posts, err := s.postService.GetAllPosts(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetFollowingPosts handles GET /api/posts/following
func (s *Server) GetFollowingPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	posts, err := s.postService.GetFollowingPosts(c.Context(), currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetUserPosts handles GET /api/posts/user/:username
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	username := c.Params("username")
	if username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username is required"))
	}

	p := parsePagination(c, 20)
	posts, err := s.postService.GetUserPosts(c.Context(), username, p.Limit, p.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetLikedPosts handles GET /api/posts/likes/:id
func (s *Server) GetLikedPosts(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	posts, err := s.postService.GetLikedPosts(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}
