package domain

// Status represents the lifecycle state of a loan application
type Status string

const (
	StatusSubmitted    Status = "submitted"
	StatusProcessing   Status = "processing"
	StatusManualReview Status = "manual_review"
	StatusApproved     Status = "approved"
	StatusRejected     Status = "rejected"
)

// ActiveStatuses are the non-terminal statuses. A PAN may have at most one
// application in any of these at a time.
var ActiveStatuses = []Status{StatusSubmitted, StatusProcessing, StatusManualReview}

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusSubmitted, StatusProcessing, StatusManualReview, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsTerminal checks if the status allows no further transitions
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// transitions is the allowed transition graph. The zero Status ("") stands for
// the initial entry into the machine.
var transitions = map[Status][]Status{
	"":                 {StatusSubmitted},
	StatusSubmitted:    {StatusProcessing, StatusRejected},
	StatusProcessing:   {StatusManualReview, StatusApproved, StatusRejected},
	StatusManualReview: {StatusApproved, StatusRejected},
}

// CanTransition checks if moving from one status to another is allowed
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// RiskLevel represents the risk tier of an application
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ReviewAction represents an officer decision on a manual review
type ReviewAction string

const (
	ReviewActionApprove ReviewAction = "approve"
	ReviewActionReject  ReviewAction = "reject"
)

// IsValid checks if the review action is a known value
func (a ReviewAction) IsValid() bool {
	return a == ReviewActionApprove || a == ReviewActionReject
}

// FinalStatus maps the review action to the resulting terminal status
func (a ReviewAction) FinalStatus() Status {
	if a == ReviewActionApprove {
		return StatusApproved
	}
	return StatusRejected
}
