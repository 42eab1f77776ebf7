package handlers

import (
	"errors"

	"spsc-loanstp/internal/core/domain"
	"spsc-loanstp/internal/core/services"
	"spsc-loanstp/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ReviewHandler handles manual review endpoints
type ReviewHandler struct {
	reviewService *services.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// ReviewRequest represents an officer review decision request
type ReviewRequest struct {
	Action  string `json:"action"`
	Officer string `json:"officer"`
	Notes   string `json:"notes"`
}

// Resolve resolves a manual-review application
// @Summary Resolve manual review
// @Description Approve or reject an application pending manual review
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param body body ReviewRequest true "Review decision"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /loan/{id}/review [put]
func (h *ReviewHandler) Resolve(c *fiber.Ctx) error {
	applicationID := c.Params("id")

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Officer == "" {
		return response.BadRequest(c, "Officer is required")
	}

	input := &services.ResolveInput{
		Action:  req.Action,
		Officer: req.Officer,
		Notes:   req.Notes,
	}

	app, err := h.reviewService.Resolve(c.Context(), applicationID, input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrApplicationNotFound):
			return response.NotFound(c, "Application not found")
		case errors.Is(err, domain.ErrNotPendingManualReview):
			return response.UnprocessableEntity(c, "Application is not pending manual review")
		case errors.Is(err, domain.ErrInvalidReviewAction):
			return response.BadRequest(c, "Action must be 'approve' or 'reject'")
		default:
			return response.InternalServerError(c, "Failed to resolve review")
		}
	}

	return response.Success(c, "Review resolved", fiber.Map{
		"application": app.ToResponse(),
	})
}
