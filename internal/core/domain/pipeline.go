package domain

// ValidationResult is the outcome of input validation
type ValidationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ScoreResult is the outcome of credit scoring
type ScoreResult struct {
	CreditScore int `json:"credit_score"`
}

// RiskResult is the outcome of risk classification
type RiskResult struct {
	RiskLevel RiskLevel `json:"risk_level"`
	Reason    string    `json:"reason"`
}

// DecisionResult is the outcome of the decision engine
type DecisionResult struct {
	Approved     bool   `json:"approved"`
	ManualReview bool   `json:"manual_review"`
	Reason       string `json:"reason"`
}

// FinalStatus maps the decision to the status the application moves to
// from processing
func (d DecisionResult) FinalStatus() Status {
	switch {
	case d.ManualReview:
		return StatusManualReview
	case d.Approved:
		return StatusApproved
	default:
		return StatusRejected
	}
}

// PipelineResult collects all stage results of one submission run
type PipelineResult struct {
	Validation ValidationResult `json:"validation"`
	Score      *ScoreResult     `json:"score,omitempty"`
	Risk       *RiskResult      `json:"risk,omitempty"`
	Decision   DecisionResult   `json:"decision"`
	Status     Status           `json:"status"`
}
