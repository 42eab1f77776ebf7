package handlers

import (
	"errors"

	"spsc-loanstp/internal/core/domain"
	"spsc-loanstp/internal/core/services"
	"spsc-loanstp/internal/pkg/pagination"
	"spsc-loanstp/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ApplicationHandler handles loan application endpoints
type ApplicationHandler struct {
	appService     *services.ApplicationService
	explainService *services.ExplainService
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(appService *services.ApplicationService, explainService *services.ExplainService) *ApplicationHandler {
	return &ApplicationHandler{
		appService:     appService,
		explainService: explainService,
	}
}

// SubmitRequest represents a loan application submission request
type SubmitRequest struct {
	Name       string  `json:"name"`
	Age        int     `json:"age"`
	Income     float64 `json:"income"`
	LoanAmount float64 `json:"loan_amount"`
	PAN        string  `json:"pan"`
}

// Submit submits a new loan application
// @Summary Submit loan application
// @Description Run a loan application through the STP pipeline
// @Tags Loans
// @Accept json
// @Produce json
// @Param body body SubmitRequest true "Application data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loan [post]
func (h *ApplicationHandler) Submit(c *fiber.Ctx) error {
	var req SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Name == "" {
		return response.BadRequest(c, "Name is required")
	}
	if req.PAN == "" {
		return response.BadRequest(c, "PAN is required")
	}

	input := &services.SubmitInput{
		Name:       req.Name,
		Age:        req.Age,
		Income:     req.Income,
		LoanAmount: req.LoanAmount,
		PAN:        req.PAN,
	}

	app, result, err := h.appService.Submit(c.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrActiveApplicationExists) {
			return response.Conflict(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to process application")
	}

	return response.Created(c, "Application processed", fiber.Map{
		"application": app.ToResponse(),
		"pipeline":    result,
	})
}

// GetByID gets an application by ID
// @Summary Get loan application
// @Description Get an application with its status history
// @Tags Loans
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loan/{id} [get]
func (h *ApplicationHandler) GetByID(c *fiber.Ctx) error {
	applicationID := c.Params("id")

	app, err := h.appService.GetByID(c.Context(), applicationID)
	if err != nil {
		if errors.Is(err, domain.ErrApplicationNotFound) {
			return response.NotFound(c, "Application not found")
		}
		return response.InternalServerError(c, "Failed to get application")
	}

	return response.Success(c, "Application retrieved", fiber.Map{
		"application": app.ToResponse(),
	})
}

// GetHistory gets the status history of an application
// @Summary Get status history
// @Description Get the ordered status transition history of an application
// @Tags Loans
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loan/{id}/history [get]
func (h *ApplicationHandler) GetHistory(c *fiber.Ctx) error {
	applicationID := c.Params("id")

	history, err := h.appService.GetHistory(c.Context(), applicationID)
	if err != nil {
		if errors.Is(err, domain.ErrApplicationNotFound) {
			return response.NotFound(c, "Application not found")
		}
		return response.InternalServerError(c, "Failed to get history")
	}

	return response.Success(c, "History retrieved", fiber.Map{
		"history": history,
	})
}

// Explain generates an on-demand explanation of an application
// @Summary Explain loan decision
// @Description Generate a plain-language explanation via the LLM collaborator
// @Tags Loans
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loan/{id}/explain [get]
func (h *ApplicationHandler) Explain(c *fiber.Ctx) error {
	applicationID := c.Params("id")

	app, err := h.appService.GetByID(c.Context(), applicationID)
	if err != nil {
		if errors.Is(err, domain.ErrApplicationNotFound) {
			return response.NotFound(c, "Application not found")
		}
		return response.InternalServerError(c, "Failed to get application")
	}

	history, err := h.appService.GetHistory(c.Context(), applicationID)
	if err != nil {
		return response.InternalServerError(c, "Failed to get history")
	}

	explanation := h.explainService.Explain(c.Context(), app, history)

	return response.Success(c, "Explanation generated", fiber.Map{
		"application_id": app.ApplicationID,
		"status":         app.Status,
		"explanation":    explanation,
	})
}

// List lists applications
// @Summary List loan applications
// @Description List applications, newest first, optionally filtered by status
// @Tags Loans
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /loan [get]
func (h *ApplicationHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	input := &services.ListInput{
		Page:   params.Page,
		Limit:  params.Limit,
		Status: c.Query("status"),
	}

	result, err := h.appService.List(c.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return response.BadRequest(c, "Unknown status filter")
		}
		return response.InternalServerError(c, "Failed to list applications")
	}

	return response.Success(c, "Applications retrieved", result)
}
