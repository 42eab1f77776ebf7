package domain

// ClassifyRisk maps income, loan amount and credit score to a risk tier.
// Rules are evaluated in priority order; the first match wins.
func ClassifyRisk(income, loanAmount float64, creditScore int) RiskResult {
	if creditScore < 550 {
		return RiskResult{RiskLevel: RiskHigh, Reason: "Very low credit score"}
	}
	if loanAmount > income*5 {
		return RiskResult{RiskLevel: RiskHigh, Reason: "Loan amount too high relative to income"}
	}
	if loanAmount > income*3 {
		return RiskResult{RiskLevel: RiskMedium, Reason: "Moderate risk loan amount"}
	}
	return RiskResult{RiskLevel: RiskLow, Reason: "Healthy income-to-loan ratio"}
}

// Decide maps credit score and risk tier to the decision outcome.
// Manual review triggers are checked before the auto-reject threshold, so
// every high-risk profile routes to manual review rather than auto-reject.
func Decide(creditScore int, riskLevel RiskLevel) DecisionResult {
	if creditScore < 600 {
		return DecisionResult{
			ManualReview: true,
			Reason:       "Low credit score requires manual verification",
		}
	}
	if riskLevel == RiskHigh {
		return DecisionResult{
			ManualReview: true,
			Reason:       "High-risk profile requires manual review",
		}
	}
	if creditScore < 630 {
		return DecisionResult{
			Reason: "Credit score below eligibility threshold",
		}
	}
	return DecisionResult{
		Approved: true,
		Reason:   "Good credit score and acceptable risk",
	}
}
