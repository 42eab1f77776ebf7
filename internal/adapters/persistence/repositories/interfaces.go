package repositories

import (
	"context"
	"time"

	"spsc-loanstp/internal/adapters/persistence/models"
	"spsc-loanstp/internal/core/domain"
)

// ApplicationRepository defines loan application data access.
//
// Multi-step writes (a status update plus its history row, or a review
// resolution plus its audit row) are committed in a single transaction:
// either all rows land or none do.
type ApplicationRepository interface {
	// CreateActive inserts a new application in submitted status together
	// with its initial null→submitted transition. Returns
	// domain.ErrActiveApplicationExists when the PAN already has a
	// non-terminal application; the check and the insert are atomic.
	CreateActive(ctx context.Context, app *models.LoanApplication) error

	// CreateRejected inserts an application that failed validation, already
	// in rejected status, with its null→submitted and submitted→rejected
	// transitions. No active-PAN check: the record is born terminal.
	CreateRejected(ctx context.Context, app *models.LoanApplication) error

	// GetByID returns the application with its ordered transition history,
	// or domain.ErrApplicationNotFound.
	GetByID(ctx context.Context, applicationID string) (*models.LoanApplication, error)

	// UpdateStatus moves the application to a new status and appends the
	// matching transition row.
	UpdateStatus(ctx context.Context, app *models.LoanApplication, to domain.Status) error

	// FinalizeDecision stores the pipeline outputs (score, risk, reason),
	// moves the application from processing to its decided status and
	// appends the transition row.
	FinalizeDecision(ctx context.Context, app *models.LoanApplication, score int, risk domain.RiskLevel, reason string, to domain.Status) error

	// ResolveReview applies an officer decision: appends the review audit
	// row, stores officer identity and notes on the record, moves the
	// status from manual_review to the terminal status and appends the
	// transition. Returns domain.ErrNotPendingManualReview when the row is
	// no longer in manual_review at commit time.
	ResolveReview(ctx context.Context, app *models.LoanApplication, action *models.ReviewAction, to domain.Status) error

	// CountCreatedSince counts applications for a PAN created at or after
	// the given instant.
	CountCreatedSince(ctx context.Context, pan string, since time.Time) (int64, error)

	// List returns applications ordered by creation time descending,
	// optionally filtered by status.
	List(ctx context.Context, status string, offset, limit int) ([]*models.LoanApplication, int64, error)

	// ListManualReviewOlderThan returns manual-review applications whose
	// last transition happened before the cutoff.
	ListManualReviewOlderThan(ctx context.Context, cutoff time.Time) ([]*models.LoanApplication, error)
}

// TransitionRepository defines read access to the append-only status history
type TransitionRepository interface {
	// GetByApplicationID returns transitions ordered by change time ascending
	GetByApplicationID(ctx context.Context, applicationID string) ([]*models.StatusTransition, error)
}

// CreditProfileRepository defines credit profile data access
type CreditProfileRepository interface {
	// UpdateScore runs fn against the locked profile row for the PAN (nil
	// when the PAN has not been scored before) and the count of
	// applications created at or after windowStart, then persists the
	// returned score. Read, count and write happen in one transaction.
	UpdateScore(ctx context.Context, pan string, windowStart time.Time, fn func(existing *models.CreditProfile, recentApps int64) int) (int, error)

	// GetByPAN returns the profile for a PAN, or domain.ErrNotFound
	GetByPAN(ctx context.Context, pan string) (*models.CreditProfile, error)
}
