package services

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"spsc-loanstp/internal/adapters/persistence/models"
	"spsc-loanstp/internal/core/domain"
)

// NotificationService pushes LINE Notify messages to the loan desk. It is
// fire-and-forget: send failures are logged and never surface to the caller.
type NotificationService struct {
	lineNotifyToken string
	enabled         bool
}

// NewNotificationService creates a new notification service
func NewNotificationService(lineNotifyToken string) *NotificationService {
	return &NotificationService{
		lineNotifyToken: lineNotifyToken,
		enabled:         lineNotifyToken != "",
	}
}

// IsEnabled checks if notification is enabled
func (s *NotificationService) IsEnabled() bool {
	return s.enabled
}

// sendLineNotify sends a message via LINE Notify
func (s *NotificationService) sendLineNotify(message string) error {
	if !s.enabled {
		return nil
	}

	data := url.Values{}
	data.Set("message", message)

	req, err := http.NewRequest("POST", "https://notify-api.line.me/api/notify", bytes.NewBufferString(data.Encode()))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+s.lineNotifyToken)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return nil
}

// notify sends and logs failures without propagating them
func (s *NotificationService) notify(message string) {
	if err := s.sendLineNotify(message); err != nil {
		log.Printf("⚠️ LINE notify failed: %v", err)
	}
}

// NotifyDecision sends the pipeline outcome for a submission
func (s *NotificationService) NotifyDecision(app *models.LoanApplication) {
	reason := ""
	if app.DecisionReason != nil {
		reason = *app.DecisionReason
	}

	var header string
	switch app.DomainStatus() {
	case domain.StatusApproved:
		header = "✅ Loan approved"
	case domain.StatusRejected:
		header = "❌ Loan rejected"
	case domain.StatusManualReview:
		header = "🔍 Loan pending manual review"
	default:
		return
	}

	s.notify(fmt.Sprintf(`
%s

📋 Application: %s
👤 Applicant: %s
💰 Amount: %.2f
📝 Reason: %s`,
		header,
		app.ApplicationID,
		app.Name,
		app.LoanAmount,
		reason,
	))
}

// NotifyReviewResolved sends the officer decision on a manual review
func (s *NotificationService) NotifyReviewResolved(app *models.LoanApplication) {
	officer := ""
	if app.ReviewedBy != nil {
		officer = *app.ReviewedBy
	}

	s.notify(fmt.Sprintf(`
🧑‍⚖️ Manual review resolved

📋 Application: %s
👤 Applicant: %s
📌 Final status: %s
✍️ Officer: %s`,
		app.ApplicationID,
		app.Name,
		app.Status,
		officer,
	))
}

// NotifyStaleReviews reminds the desk about long-pending manual reviews
func (s *NotificationService) NotifyStaleReviews(apps []*models.LoanApplication) {
	if len(apps) == 0 {
		return
	}

	msg := fmt.Sprintf("\n⏰ %d application(s) pending manual review for over 3 days:\n", len(apps))
	for _, app := range apps {
		msg += fmt.Sprintf("- %s (%s)\n", app.ApplicationID, app.Name)
	}

	s.notify(msg)
}
