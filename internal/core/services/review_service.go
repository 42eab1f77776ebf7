package services

import (
	"context"
	"strings"

	"spsc-loanstp/internal/adapters/persistence/models"
	"spsc-loanstp/internal/adapters/persistence/repositories"
	"spsc-loanstp/internal/core/domain"
)

// ReviewService resolves manual-review applications on an officer decision.
// This is the only path that moves a manual_review application to a terminal
// state.
type ReviewService struct {
	appRepo       repositories.ApplicationRepository
	notifyService *NotificationService
}

// NewReviewService creates a new review service
func NewReviewService(appRepo repositories.ApplicationRepository, notifyService *NotificationService) *ReviewService {
	return &ReviewService{
		appRepo:       appRepo,
		notifyService: notifyService,
	}
}

// ResolveInput represents an officer review decision
type ResolveInput struct {
	Action  string `json:"action" validate:"required"`
	Officer string `json:"officer" validate:"required"`
	Notes   string `json:"notes"`
}

// Resolve applies an officer decision to a manual-review application.
// The audit row, the record update and the status transition commit
// atomically; a second resolve attempt fails with
// domain.ErrNotPendingManualReview without double-logging.
func (s *ReviewService) Resolve(ctx context.Context, applicationID string, input *ResolveInput) (*models.LoanApplication, error) {
	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	if app.DomainStatus() != domain.StatusManualReview {
		return nil, domain.ErrNotPendingManualReview
	}

	action := domain.ReviewAction(strings.ToLower(strings.TrimSpace(input.Action)))
	if !action.IsValid() {
		return nil, domain.ErrInvalidReviewAction
	}

	finalStatus := action.FinalStatus()
	audit := &models.ReviewAction{
		ApplicationID: app.ApplicationID,
		Officer:       input.Officer,
		Action:        string(finalStatus),
		Notes:         input.Notes,
	}

	if err := s.appRepo.ResolveReview(ctx, app, audit, finalStatus); err != nil {
		return nil, err
	}

	if s.notifyService != nil {
		s.notifyService.NotifyReviewResolved(app)
	}

	return s.appRepo.GetByID(ctx, app.ApplicationID)
}
