package services

import (
	"context"
	"log"
	"time"

	"spsc-loanstp/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// staleReviewAge is how long a manual-review application may sit before the
// daily sweep flags it
const staleReviewAge = 3 * 24 * time.Hour

// CronService runs scheduled background jobs. The state machine itself has no
// background workers; this only reads and reminds.
type CronService struct {
	cron          *cron.Cron
	appRepo       repositories.ApplicationRepository
	notifyService *NotificationService
}

// NewCronService creates a new cron service
func NewCronService(appRepo repositories.ApplicationRepository, notifyService *NotificationService) *CronService {
	return &CronService{
		cron:          cron.New(),
		appRepo:       appRepo,
		notifyService: notifyService,
	}
}

// Start schedules the jobs (stale review reminder daily at 08:30)
func (s *CronService) Start() {
	if _, err := s.cron.AddFunc("30 8 * * *", s.remindStaleReviews); err != nil {
		log.Printf("❌ Failed to schedule stale review reminder: %v", err)
		return
	}
	s.cron.Start()
	log.Println("✅ Cron service started (stale review reminder at 08:30)")
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 Cron service stopped")
}

// remindStaleReviews notifies about manual-review applications older than
// staleReviewAge
func (s *CronService) remindStaleReviews() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().UTC().Add(-staleReviewAge)
	apps, err := s.appRepo.ListManualReviewOlderThan(ctx, cutoff)
	if err != nil {
		log.Printf("❌ Stale review query error: %v", err)
		return
	}

	if len(apps) == 0 {
		return
	}

	log.Printf("⏰ %d stale manual-review application(s) pending", len(apps))
	if s.notifyService != nil {
		s.notifyService.NotifyStaleReviews(apps)
	}
}
