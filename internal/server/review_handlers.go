package server

import (
	"errors"

	"canteenhub/internal/middleware"
	"canteenhub/internal/models"
	"canteenhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateReview stores a new canteen review for the authenticated user.
func (s *Server) CreateReview(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(uint)

	var in service.ReviewInput
	if err := c.BodyParser(&in); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if in.UserID == 0 {
		in.UserID = userID
	}
	if in.UserID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only post reviews as yourself"))
	}

	if errs := s.reviews.Validate(in); len(errs) > 0 {
		return models.RespondWithFieldErrors(c, errs)
	}

	review, err := s.reviews.Create(c.Context(), in)
	if err != nil {
		return mapServiceError(c, err)
	}

	middleware.Logger.InfoContext(c.Context(), "review created",
		"review_id", review.ID, "user_id", userID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Review posted successfully",
		"success": true,
		"review":  review,
	})
}

// GetReviews returns a page of the public review feed.
func (s *Server) GetReviews(c *fiber.Ctx) error {
	page, limit := parsePage(c)

	result, err := s.reviews.ListPage(c.Context(), page, limit)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(result)
}

// UpdateReview applies a partial edit to a review owned by the caller.
func (s *Server) UpdateReview(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(uint)

	var req struct {
		ID            uint                      `json:"id"`
		UpdatedReview service.ReviewUpdateInput `json:"updatedReview"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.ID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Review id is required"))
	}

	review, err := s.reviews.Update(c.Context(), userID, req.ID, req.UpdatedReview)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Review updated successfully",
		"success": true,
		"review":  review,
	})
}

// DeleteReview removes a review owned by the caller. The id comes from
// the query string; a lookup or delete failure surfaces as a 500.
func (s *Server) DeleteReview(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(uint)

	id := c.QueryInt("id", 0)
	if id <= 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Review id is required"))
	}

	if err := s.reviews.Delete(c.Context(), userID, uint(id)); err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "FORBIDDEN" {
			return mapServiceError(c, err)
		}
		// Unknown ids and storage failures both report as server errors.
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	middleware.Logger.InfoContext(c.Context(), "review deleted",
		"review_id", id, "user_id", userID)
	return c.JSON(fiber.Map{
		"message": "Review deleted successfully",
		"success": true,
	})
}
