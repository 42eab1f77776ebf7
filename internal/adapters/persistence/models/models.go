package models

import (
	"time"

	"spsc-loanstp/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Main Tables
// ============================================================

// LoanApplication represents loan_applications table
//
// ActivePAN is a stored generated column: equal to PAN while the application
// is in a non-terminal status, NULL once terminal. The unique index on it is
// what makes the one-active-application-per-PAN check race-free: a second
// concurrent insert for the same PAN fails with a duplicate key error.
type LoanApplication struct {
	ApplicationID  string    `gorm:"primaryKey;size:20" json:"application_id"`
	Name           string    `gorm:"size:100;not null" json:"name"`
	Age            int       `gorm:"not null" json:"age"`
	Income         float64   `gorm:"type:decimal(15,2);not null" json:"income"`
	LoanAmount     float64   `gorm:"type:decimal(15,2);not null" json:"loan_amount"`
	PAN            string    `gorm:"column:pan;size:10;not null;index" json:"pan"`
	Status         string    `gorm:"size:20;not null" json:"status"`
	ActivePAN      *string   `gorm:"column:active_pan;->;type:varchar(10) GENERATED ALWAYS AS (CASE WHEN status IN ('submitted','processing','manual_review') THEN pan END) STORED;uniqueIndex" json:"-"`
	CreditScore    *int      `json:"credit_score"`
	RiskLevel      *string   `gorm:"size:10" json:"risk_level"`
	DecisionReason *string   `gorm:"type:text" json:"decision_reason"`
	OfficerNotes   *string   `gorm:"type:text" json:"officer_notes"`
	ReviewedBy     *string   `gorm:"size:100" json:"reviewed_by"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Transitions []StatusTransition `gorm:"foreignKey:ApplicationID" json:"transitions,omitempty"`
}

func (LoanApplication) TableName() string {
	return "loan_applications"
}

// DomainStatus returns the status as a domain value
func (a *LoanApplication) DomainStatus() domain.Status {
	return domain.Status(a.Status)
}

// IsActive reports whether the application is in a non-terminal status
func (a *LoanApplication) IsActive() bool {
	return !a.DomainStatus().IsTerminal()
}

// StatusTransition represents loan_status_history table (append-only)
type StatusTransition struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ApplicationID string    `gorm:"size:20;not null;index" json:"application_id"`
	OldStatus     *string   `gorm:"size:20" json:"old_status"`
	NewStatus     string    `gorm:"size:20;not null" json:"new_status"`
	ChangedAt     time.Time `gorm:"autoCreateTime;index" json:"changed_at"`
}

func (StatusTransition) TableName() string {
	return "loan_status_history"
}

// CreditProfile represents credit_profiles table (one row per PAN)
type CreditProfile struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PAN         string    `gorm:"column:pan;size:10;uniqueIndex;not null" json:"pan"`
	CreditScore int       `gorm:"not null" json:"credit_score"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CreditProfile) TableName() string {
	return "credit_profiles"
}

// ReviewAction represents loan_manual_review table (append-only audit log)
type ReviewAction struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ApplicationID string    `gorm:"size:20;not null;index" json:"application_id"`
	Officer       string    `gorm:"size:100;not null" json:"officer"`
	Action        string    `gorm:"size:20;not null" json:"action"`
	Notes         string    `gorm:"type:text" json:"notes"`
	ReviewedAt    time.Time `gorm:"autoCreateTime" json:"reviewed_at"`
}

func (ReviewAction) TableName() string {
	return "loan_manual_review"
}

// ============================================================
// Response DTOs
// ============================================================

// StatusTransitionResponse DTO
type StatusTransitionResponse struct {
	OldStatus *string   `json:"old_status"`
	NewStatus string    `json:"new_status"`
	ChangedAt time.Time `json:"changed_at"`
}

// LoanApplicationResponse DTO
type LoanApplicationResponse struct {
	ApplicationID  string                     `json:"application_id"`
	Name           string                     `json:"name"`
	Age            int                        `json:"age"`
	Income         float64                    `json:"income"`
	LoanAmount     float64                    `json:"loan_amount"`
	PAN            string                     `json:"pan"`
	Status         string                     `json:"status"`
	CreditScore    *int                       `json:"credit_score"`
	RiskLevel      *string                    `json:"risk_level"`
	DecisionReason *string                    `json:"decision_reason"`
	OfficerNotes   *string                    `json:"officer_notes"`
	ReviewedBy     *string                    `json:"reviewed_by"`
	CreatedAt      time.Time                  `json:"created_at"`
	History        []StatusTransitionResponse `json:"history"`
}

func (a *LoanApplication) ToResponse() *LoanApplicationResponse {
	resp := &LoanApplicationResponse{
		ApplicationID:  a.ApplicationID,
		Name:           a.Name,
		Age:            a.Age,
		Income:         a.Income,
		LoanAmount:     a.LoanAmount,
		PAN:            a.PAN,
		Status:         a.Status,
		CreditScore:    a.CreditScore,
		RiskLevel:      a.RiskLevel,
		DecisionReason: a.DecisionReason,
		OfficerNotes:   a.OfficerNotes,
		ReviewedBy:     a.ReviewedBy,
		CreatedAt:      a.CreatedAt,
		History:        make([]StatusTransitionResponse, 0, len(a.Transitions)),
	}

	for _, t := range a.Transitions {
		resp.History = append(resp.History, StatusTransitionResponse{
			OldStatus: t.OldStatus,
			NewStatus: t.NewStatus,
			ChangedAt: t.ChangedAt,
		})
	}

	return resp
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&LoanApplication{},
		&StatusTransition{},
		&CreditProfile{},
		&ReviewAction{},
	)
}
