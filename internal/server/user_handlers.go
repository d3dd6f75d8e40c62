package server

import (
	"canteenhub/internal/models"
	"canteenhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUsers returns a page of the public user directory.
func (s *Server) GetUsers(c *fiber.Ctx) error {
	page, limit := parsePage(c)

	result, err := s.users.ListDirectory(c.Context(), page, limit)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(result)
}

// UpdateMyProfile applies a partial profile edit for the caller.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Not authenticated"))
	}

	var in service.ProfileUpdateInput
	if err := c.BodyParser(&in); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.users.UpdateProfile(c.Context(), userID, in)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"success": true,
		"user":    user,
	})
}
