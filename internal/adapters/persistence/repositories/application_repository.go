package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"spsc-loanstp/internal/adapters/persistence/models"
	"spsc-loanstp/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// applicationRepository implements ApplicationRepository interface
type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

// CreateActive inserts a new active application with its first transition.
// The locked existence check and the insert run in one transaction; the
// unique index on active_pan backs the check under concurrent submissions.
func (r *applicationRepository) CreateActive(ctx context.Context, app *models.LoanApplication) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.LoanApplication
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("pan = ? AND status IN ?", app.PAN, statusStrings(domain.ActiveStatuses)).
			First(&existing).Error
		if err == nil {
			return domain.ErrActiveApplicationExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(app).Error; err != nil {
			if isDuplicateKeyError(err) {
				return domain.ErrActiveApplicationExists
			}
			return err
		}

		return tx.Create(&models.StatusTransition{
			ApplicationID: app.ApplicationID,
			OldStatus:     nil,
			NewStatus:     string(domain.StatusSubmitted),
		}).Error
	})
}

// CreateRejected inserts a validation-rejected application with its
// null→submitted and submitted→rejected transitions.
func (r *applicationRepository) CreateRejected(ctx context.Context, app *models.LoanApplication) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(app).Error; err != nil {
			return err
		}

		submitted := string(domain.StatusSubmitted)
		history := []models.StatusTransition{
			{ApplicationID: app.ApplicationID, OldStatus: nil, NewStatus: submitted},
			{ApplicationID: app.ApplicationID, OldStatus: &submitted, NewStatus: string(domain.StatusRejected)},
		}
		return tx.Create(&history).Error
	})
}

// GetByID gets an application by ID with its ordered history
func (r *applicationRepository) GetByID(ctx context.Context, applicationID string) (*models.LoanApplication, error) {
	var app models.LoanApplication
	err := r.db.WithContext(ctx).
		Preload("Transitions", func(db *gorm.DB) *gorm.DB {
			return db.Order("changed_at ASC, id ASC")
		}).
		Where("application_id = ?", applicationID).
		First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

// UpdateStatus moves the application to a new status and logs the transition
func (r *applicationRepository) UpdateStatus(ctx context.Context, app *models.LoanApplication, to domain.Status) error {
	old := app.Status
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.LoanApplication{}).
			Where("application_id = ? AND status = ?", app.ApplicationID, old).
			Update("status", string(to))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrInvalidStatusTransition
		}

		if err := tx.Create(&models.StatusTransition{
			ApplicationID: app.ApplicationID,
			OldStatus:     &old,
			NewStatus:     string(to),
		}).Error; err != nil {
			return err
		}

		app.Status = string(to)
		return nil
	})
}

// FinalizeDecision stores pipeline outputs and the terminal-or-suspended status
func (r *applicationRepository) FinalizeDecision(ctx context.Context, app *models.LoanApplication, score int, risk domain.RiskLevel, reason string, to domain.Status) error {
	old := app.Status
	riskStr := string(risk)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.LoanApplication{}).
			Where("application_id = ? AND status = ?", app.ApplicationID, old).
			Updates(map[string]interface{}{
				"status":          string(to),
				"credit_score":    score,
				"risk_level":      riskStr,
				"decision_reason": reason,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrInvalidStatusTransition
		}

		if err := tx.Create(&models.StatusTransition{
			ApplicationID: app.ApplicationID,
			OldStatus:     &old,
			NewStatus:     string(to),
		}).Error; err != nil {
			return err
		}

		app.Status = string(to)
		app.CreditScore = &score
		app.RiskLevel = &riskStr
		app.DecisionReason = &reason
		return nil
	})
}

// ResolveReview applies an officer decision atomically: audit row, record
// update and status transition. The guarded update makes a second resolve
// attempt fail instead of double-logging.
func (r *applicationRepository) ResolveReview(ctx context.Context, app *models.LoanApplication, action *models.ReviewAction, to domain.Status) error {
	old := string(domain.StatusManualReview)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.LoanApplication{}).
			Where("application_id = ? AND status = ?", app.ApplicationID, old).
			Updates(map[string]interface{}{
				"status":        string(to),
				"officer_notes": action.Notes,
				"reviewed_by":   action.Officer,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotPendingManualReview
		}

		if err := tx.Create(action).Error; err != nil {
			return err
		}

		if err := tx.Create(&models.StatusTransition{
			ApplicationID: app.ApplicationID,
			OldStatus:     &old,
			NewStatus:     string(to),
		}).Error; err != nil {
			return err
		}

		app.Status = string(to)
		app.OfficerNotes = &action.Notes
		app.ReviewedBy = &action.Officer
		return nil
	})
}

// CountCreatedSince counts applications for a PAN created in the window
func (r *applicationRepository) CountCreatedSince(ctx context.Context, pan string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LoanApplication{}).
		Where("pan = ? AND created_at >= ?", pan, since).
		Count(&count).Error
	return count, err
}

// List lists applications with pagination, newest first
func (r *applicationRepository) List(ctx context.Context, status string, offset, limit int) ([]*models.LoanApplication, int64, error) {
	var apps []*models.LoanApplication
	var total int64

	query := r.db.WithContext(ctx).Model(&models.LoanApplication{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&apps).Error

	return apps, total, err
}

// ListManualReviewOlderThan returns manual-review applications idle since cutoff
func (r *applicationRepository) ListManualReviewOlderThan(ctx context.Context, cutoff time.Time) ([]*models.LoanApplication, error) {
	var apps []*models.LoanApplication
	err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", string(domain.StatusManualReview), cutoff).
		Order("updated_at ASC").
		Find(&apps).Error
	return apps, err
}

// statusStrings converts domain statuses for use in IN clauses
func statusStrings(statuses []domain.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// isDuplicateKeyError detects the MySQL duplicate key error (1062) raised by
// the unique index on active_pan
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}
