package repositories

import (
	"context"

	"spsc-loanstp/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// transitionRepository implements TransitionRepository interface
type transitionRepository struct {
	db *gorm.DB
}

// NewTransitionRepository creates a new transition repository
func NewTransitionRepository(db *gorm.DB) TransitionRepository {
	return &transitionRepository{db: db}
}

// GetByApplicationID gets transitions for an application, oldest first
func (r *transitionRepository) GetByApplicationID(ctx context.Context, applicationID string) ([]*models.StatusTransition, error) {
	var transitions []*models.StatusTransition
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("changed_at ASC, id ASC").
		Find(&transitions).Error
	return transitions, err
}
