package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"spsc-loanstp/internal/adapters/persistence/models"
	"spsc-loanstp/internal/adapters/persistence/repositories"
	"spsc-loanstp/internal/core/domain"
	"spsc-loanstp/internal/pkg/pan"

	"github.com/google/uuid"
)

// Validation bounds. Age bounds are strict-exclusive: 18 and 100 themselves
// are rejected.
const (
	MinAge            = 18
	MaxAge            = 100
	MaxLoanToIncome   = 10
	applicationPrefix = "ln_"
)

// ApplicationService owns the loan application lifecycle: validation, the
// one-active-application-per-PAN invariant, pipeline sequencing and status
// transitions.
type ApplicationService struct {
	appRepo        repositories.ApplicationRepository
	transitionRepo repositories.TransitionRepository
	scoringService *ScoringService
	notifyService  *NotificationService
}

// NewApplicationService creates a new application service
func NewApplicationService(
	appRepo repositories.ApplicationRepository,
	transitionRepo repositories.TransitionRepository,
	scoringService *ScoringService,
	notifyService *NotificationService,
) *ApplicationService {
	return &ApplicationService{
		appRepo:        appRepo,
		transitionRepo: transitionRepo,
		scoringService: scoringService,
		notifyService:  notifyService,
	}
}

// SubmitInput represents a loan application submission
type SubmitInput struct {
	Name       string  `json:"name" validate:"required"`
	Age        int     `json:"age" validate:"required"`
	Income     float64 `json:"income" validate:"required"`
	LoanAmount float64 `json:"loan_amount" validate:"required"`
	PAN        string  `json:"pan" validate:"required"`
}

// Submit runs a submission through the full pipeline:
// validate → score → classify → decide, recording every status transition.
// Returns domain.ErrActiveApplicationExists when the PAN already has a
// non-terminal application; in that case nothing is persisted.
func (s *ApplicationService) Submit(ctx context.Context, input *SubmitInput) (*models.LoanApplication, *domain.PipelineResult, error) {
	normalizedPAN := pan.Normalize(input.PAN)

	app := &models.LoanApplication{
		ApplicationID: newApplicationID(),
		Name:          strings.TrimSpace(input.Name),
		Age:           input.Age,
		Income:        input.Income,
		LoanAmount:    input.LoanAmount,
		PAN:           normalizedPAN,
		CreatedAt:     time.Now().UTC(),
	}

	result := &domain.PipelineResult{
		Validation: validateSubmission(input, normalizedPAN),
	}

	// Validation failure short-circuits: the application is persisted
	// already rejected, scoring and risk never run, and the active-PAN
	// check is skipped because the record is born terminal.
	if !result.Validation.Success {
		reason := result.Validation.Message
		app.Status = string(domain.StatusRejected)
		app.DecisionReason = &reason
		result.Decision = domain.DecisionResult{Reason: reason}
		result.Status = domain.StatusRejected

		if err := s.appRepo.CreateRejected(ctx, app); err != nil {
			return nil, nil, err
		}
		return s.reload(ctx, app.ApplicationID, result)
	}

	// Atomic check-and-insert: submitted, with its null→submitted transition
	app.Status = string(domain.StatusSubmitted)
	if err := s.appRepo.CreateActive(ctx, app); err != nil {
		return nil, nil, err
	}

	if err := s.appRepo.UpdateStatus(ctx, app, domain.StatusProcessing); err != nil {
		return nil, nil, err
	}

	// Scoring → risk → decision. A storage failure here is fatal to the
	// operation and propagates; the record stays in processing with its
	// history intact.
	score, err := s.scoringService.Score(ctx, app.PAN, app.Income, app.LoanAmount)
	if err != nil {
		return nil, nil, err
	}
	result.Score = &domain.ScoreResult{CreditScore: score}

	risk := domain.ClassifyRisk(app.Income, app.LoanAmount, score)
	result.Risk = &risk

	result.Decision = domain.Decide(score, risk.RiskLevel)
	result.Status = result.Decision.FinalStatus()

	if err := s.appRepo.FinalizeDecision(ctx, app, score, risk.RiskLevel, result.Decision.Reason, result.Status); err != nil {
		return nil, nil, err
	}

	// Notifications are outside the critical path and never fail the pipeline
	if s.notifyService != nil {
		s.notifyService.NotifyDecision(app)
	}

	return s.reload(ctx, app.ApplicationID, result)
}

// GetByID gets an application with its history
func (s *ApplicationService) GetByID(ctx context.Context, applicationID string) (*models.LoanApplication, error) {
	return s.appRepo.GetByID(ctx, applicationID)
}

// GetHistory gets the ordered transition history of an application
func (s *ApplicationService) GetHistory(ctx context.Context, applicationID string) ([]*models.StatusTransition, error) {
	if _, err := s.appRepo.GetByID(ctx, applicationID); err != nil {
		return nil, err
	}
	return s.transitionRepo.GetByApplicationID(ctx, applicationID)
}

// ListInput represents list input
type ListInput struct {
	Page   int
	Limit  int
	Status string
}

// ListOutput represents list output
type ListOutput struct {
	Applications []*models.LoanApplicationResponse `json:"applications"`
	Total        int64                             `json:"total"`
	Page         int                               `json:"page"`
	Limit        int                               `json:"limit"`
	TotalPages   int                               `json:"total_pages"`
}

// List lists applications, newest first, optionally filtered by status
func (s *ApplicationService) List(ctx context.Context, input *ListInput) (*ListOutput, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.Limit < 1 {
		input.Limit = 10
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	if input.Status != "" && !domain.Status(input.Status).IsValid() {
		return nil, domain.ErrInvalidInput
	}

	offset := (input.Page - 1) * input.Limit
	apps, total, err := s.appRepo.List(ctx, input.Status, offset, input.Limit)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.LoanApplicationResponse, 0, len(apps))
	for _, app := range apps {
		responses = append(responses, app.ToResponse())
	}

	totalPages := int(total) / input.Limit
	if int(total)%input.Limit > 0 {
		totalPages++
	}

	return &ListOutput{
		Applications: responses,
		Total:        total,
		Page:         input.Page,
		Limit:        input.Limit,
		TotalPages:   totalPages,
	}, nil
}

// reload re-reads the application so the response carries the full history
func (s *ApplicationService) reload(ctx context.Context, applicationID string, result *domain.PipelineResult) (*models.LoanApplication, *domain.PipelineResult, error) {
	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, nil, err
	}
	return app, result, nil
}

// validateSubmission checks the submission against the intake rules
func validateSubmission(input *SubmitInput, normalizedPAN string) domain.ValidationResult {
	if input.Age <= MinAge || input.Age >= MaxAge {
		return domain.ValidationResult{Message: "Age out of allowed range"}
	}
	if input.Income <= 0 {
		return domain.ValidationResult{Message: "Income must be greater than zero"}
	}
	if input.LoanAmount <= 0 {
		return domain.ValidationResult{Message: "Loan amount must be greater than zero"}
	}
	if input.LoanAmount > input.Income*MaxLoanToIncome {
		return domain.ValidationResult{Message: "Loan amount extremely high relative to income"}
	}
	if !pan.IsValid(normalizedPAN) {
		return domain.ValidationResult{Message: "PAN does not match the required format"}
	}
	return domain.ValidationResult{Success: true, Message: "Input looks valid"}
}

// newApplicationID generates an ID like ln_9f8a2b1c4d3e
func newApplicationID() string {
	id := uuid.New()
	return applicationPrefix + fmt.Sprintf("%x", id[:])[:12]
}
