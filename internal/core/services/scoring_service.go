package services

import (
	"context"
	"math/rand"
	"time"

	"spsc-loanstp/internal/adapters/persistence/models"
	"spsc-loanstp/internal/adapters/persistence/repositories"
)

// Scoring policy constants. The baseline range is a policy choice for fresh
// profiles, not a security property.
const (
	BaselineScoreMin = 600
	BaselineScoreMax = 780
	ScoreFloor       = 500
	ScoreCeil        = 800

	RepeatApplicationWindow = 30 * 24 * time.Hour
	RepeatPenalty           = 30
	LeveragePenalty         = 20
	LeverageMultiple        = 3
)

// ScoringService computes and maintains per-PAN credit scores
type ScoringService struct {
	profileRepo repositories.CreditProfileRepository
}

// NewScoringService creates a new scoring service
func NewScoringService(profileRepo repositories.CreditProfileRepository) *ScoringService {
	return &ScoringService{profileRepo: profileRepo}
}

// Score computes the credit score for a PAN and persists it.
//
// First request for a PAN draws a fresh baseline. Repeat requests adjust the
// stored score: -30 when more than one application for the PAN falls inside
// the trailing 30 days (the current submission counts), -20 when the loan
// amount exceeds 3x income, clamped to [500, 800]. The profile read, the
// window count and the score write are transactionally consistent.
func (s *ScoringService) Score(ctx context.Context, pan string, income, loanAmount float64) (int, error) {
	windowStart := time.Now().UTC().Add(-RepeatApplicationWindow)

	return s.profileRepo.UpdateScore(ctx, pan, windowStart, func(existing *models.CreditProfile, recentApps int64) int {
		if existing == nil {
			return BaselineScoreMin + rand.Intn(BaselineScoreMax-BaselineScoreMin+1)
		}

		score := existing.CreditScore
		if recentApps > 1 {
			score -= RepeatPenalty
		}
		if loanAmount > income*LeverageMultiple {
			score -= LeveragePenalty
		}
		return clampScore(score)
	})
}

// clampScore bounds a score to [ScoreFloor, ScoreCeil]
func clampScore(score int) int {
	if score < ScoreFloor {
		return ScoreFloor
	}
	if score > ScoreCeil {
		return ScoreCeil
	}
	return score
}
