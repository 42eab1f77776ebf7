package repositories

import (
	"context"
	"errors"
	"time"

	"spsc-loanstp/internal/adapters/persistence/models"
	"spsc-loanstp/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// creditProfileRepository implements CreditProfileRepository interface
type creditProfileRepository struct {
	db *gorm.DB
}

// NewCreditProfileRepository creates a new credit profile repository
func NewCreditProfileRepository(db *gorm.DB) CreditProfileRepository {
	return &creditProfileRepository{db: db}
}

// UpdateScore runs the read-modify-write for a PAN's score in one
// transaction. The profile row is locked for the duration, so concurrent
// scoring requests for the same PAN serialize instead of losing updates.
func (r *creditProfileRepository) UpdateScore(ctx context.Context, pan string, windowStart time.Time, fn func(existing *models.CreditProfile, recentApps int64) int) (int, error) {
	var score int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile models.CreditProfile
		found := true
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("pan = ?", pan).
			First(&profile).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			found = false
		}

		var recentApps int64
		if err := tx.Model(&models.LoanApplication{}).
			Where("pan = ? AND created_at >= ?", pan, windowStart).
			Count(&recentApps).Error; err != nil {
			return err
		}

		if found {
			score = fn(&profile, recentApps)
			profile.CreditScore = score
			return tx.Save(&profile).Error
		}

		score = fn(nil, recentApps)
		return tx.Create(&models.CreditProfile{
			PAN:         pan,
			CreditScore: score,
		}).Error
	})

	return score, err
}

// GetByPAN gets a credit profile by PAN
func (r *creditProfileRepository) GetByPAN(ctx context.Context, pan string) (*models.CreditProfile, error) {
	var profile models.CreditProfile
	err := r.db.WithContext(ctx).Where("pan = ?", pan).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}
