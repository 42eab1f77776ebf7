package services

import (
	"context"
	"time"

	"spsc-loanstp/internal/core/domain"

	"gorm.io/gorm"
)

// DashboardService aggregates portfolio statistics
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// DashboardData represents portfolio dashboard data
type DashboardData struct {
	// Counts by status
	TotalApplications int64 `json:"total_applications"`
	Submitted         int64 `json:"submitted"`
	Processing        int64 `json:"processing"`
	ManualReview      int64 `json:"manual_review"`
	Approved          int64 `json:"approved"`
	Rejected          int64 `json:"rejected"`

	// Amounts
	TotalRequestedAmount float64 `json:"total_requested_amount"`
	ApprovedAmount       float64 `json:"approved_amount"`

	// Monthly statistics
	ApplicationsThisMonth int64   `json:"applications_this_month"`
	AmountThisMonth       float64 `json:"amount_this_month"`

	// Scoring
	AverageCreditScore float64 `json:"average_credit_score"`

	// Recent activity
	RecentApplications []ApplicationSummary `json:"recent_applications"`
}

// ApplicationSummary represents a row in the recent-activity list
type ApplicationSummary struct {
	ApplicationID string    `json:"application_id"`
	Name          string    `json:"name"`
	LoanAmount    float64   `json:"loan_amount"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// GetDashboard returns portfolio dashboard data
func (s *DashboardService) GetDashboard(ctx context.Context) (*DashboardData, error) {
	data := &DashboardData{}

	// Counts by status
	s.db.WithContext(ctx).Table("loan_applications").Count(&data.TotalApplications)
	s.countByStatus(ctx, domain.StatusSubmitted, &data.Submitted)
	s.countByStatus(ctx, domain.StatusProcessing, &data.Processing)
	s.countByStatus(ctx, domain.StatusManualReview, &data.ManualReview)
	s.countByStatus(ctx, domain.StatusApproved, &data.Approved)
	s.countByStatus(ctx, domain.StatusRejected, &data.Rejected)

	// Amounts
	s.db.WithContext(ctx).Table("loan_applications").
		Select("COALESCE(SUM(loan_amount), 0)").
		Scan(&data.TotalRequestedAmount)

	s.db.WithContext(ctx).Table("loan_applications").
		Where("status = ?", string(domain.StatusApproved)).
		Select("COALESCE(SUM(loan_amount), 0)").
		Scan(&data.ApprovedAmount)

	// This month
	monthStart := time.Now().UTC().Truncate(24 * time.Hour)
	monthStart = time.Date(monthStart.Year(), monthStart.Month(), 1, 0, 0, 0, 0, time.UTC)

	s.db.WithContext(ctx).Table("loan_applications").
		Where("created_at >= ?", monthStart).
		Count(&data.ApplicationsThisMonth)

	s.db.WithContext(ctx).Table("loan_applications").
		Where("created_at >= ?", monthStart).
		Select("COALESCE(SUM(loan_amount), 0)").
		Scan(&data.AmountThisMonth)

	// Average stored credit score across profiles
	s.db.WithContext(ctx).Table("credit_profiles").
		Select("COALESCE(AVG(credit_score), 0)").
		Scan(&data.AverageCreditScore)

	// Recent applications
	err := s.db.WithContext(ctx).Table("loan_applications").
		Select("application_id, name, loan_amount, status, created_at").
		Order("created_at DESC").
		Limit(10).
		Scan(&data.RecentApplications).Error
	if err != nil {
		return nil, err
	}

	return data, nil
}

func (s *DashboardService) countByStatus(ctx context.Context, status domain.Status, out *int64) {
	s.db.WithContext(ctx).Table("loan_applications").
		Where("status = ?", string(status)).
		Count(out)
}
