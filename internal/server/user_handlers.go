package server

import (
	"aviary/internal/models"
	"aviary/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUserProfile handles GET /api/users/profile/:username
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	username := c.Params("username")
	if username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username is required"))
	}

	user, err := s.userService.GetProfile(c.Context(), username)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// FollowUnfollowUser handles POST /api/users/follow/:id. The same endpoint
// follows and unfollows depending on the current edge.
func (s *Server) FollowUnfollowUser(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	followed, err := s.userService.ToggleFollow(c.Context(), currentUserID(c), targetID)
	if err != nil {
		return respondError(c, err)
	}

	message := "User unfollowed successfully"
	if followed {
		message = "User followed successfully"
	}
	return c.JSON(fiber.Map{"message": message})
}

// GetSuggestedUsers handles GET /api/users/suggested
func (s *Server) GetSuggestedUsers(c *fiber.Ctx) error {
	suggested, err := s.userService.GetSuggestedUsers(c.Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(suggested)
}

// UpdateProfile handles POST /api/users/update
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req struct {
		FullName        string `json:"fullName"`
		Username        string `json:"username"`
		Email           string `json:"email"`
		Bio             string `json:"bio"`
		Link            string `json:"link"`
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
		ProfileImg      string `json:"profileImg"`
		CoverImg        string `json:"coverImg"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:          currentUserID(c),
		FullName:        req.FullName,
		Username:        req.Username,
		Email:           req.Email,
		Bio:             req.Bio,
		Link:            req.Link,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ProfileImg:      req.ProfileImg,
		CoverImg:        req.CoverImg,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
