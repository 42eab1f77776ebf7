package services_test

import (
	"context"
	"sync"
	"time"

	"spsc-loanstp/internal/adapters/persistence/models"
	"spsc-loanstp/internal/core/domain"
)

// fakeStore is an in-memory stand-in for the persistence layer. The mutex
// makes every repository call atomic, mirroring the transactional guarantees
// of the real repositories, so concurrent submissions contend the same way.
type fakeStore struct {
	mu          sync.Mutex
	apps        map[string]*models.LoanApplication
	transitions map[string][]*models.StatusTransition
	reviews     []*models.ReviewAction
	profiles    map[string]*models.CreditProfile
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		apps:        make(map[string]*models.LoanApplication),
		transitions: make(map[string][]*models.StatusTransition),
		profiles:    make(map[string]*models.CreditProfile),
	}
}

func strPtr(s string) *string { return &s }

func cloneApp(app *models.LoanApplication) *models.LoanApplication {
	c := *app
	c.Transitions = nil
	return &c
}

func (f *fakeStore) appendTransition(applicationID string, old *string, newStatus string) {
	f.transitions[applicationID] = append(f.transitions[applicationID], &models.StatusTransition{
		ID:            uint(len(f.transitions[applicationID]) + 1),
		ApplicationID: applicationID,
		OldStatus:     old,
		NewStatus:     newStatus,
		ChangedAt:     time.Now().UTC(),
	})
}

// ApplicationRepository

func (f *fakeStore) CreateActive(ctx context.Context, app *models.LoanApplication) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.apps {
		if existing.PAN == app.PAN && !domain.Status(existing.Status).IsTerminal() {
			return domain.ErrActiveApplicationExists
		}
	}

	f.apps[app.ApplicationID] = cloneApp(app)
	f.appendTransition(app.ApplicationID, nil, app.Status)
	return nil
}

func (f *fakeStore) CreateRejected(ctx context.Context, app *models.LoanApplication) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.apps[app.ApplicationID] = cloneApp(app)
	f.appendTransition(app.ApplicationID, nil, string(domain.StatusSubmitted))
	f.appendTransition(app.ApplicationID, strPtr(string(domain.StatusSubmitted)), string(domain.StatusRejected))
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, applicationID string) (*models.LoanApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.apps[applicationID]
	if !ok {
		return nil, domain.ErrApplicationNotFound
	}

	out := cloneApp(stored)
	for _, t := range f.transitions[applicationID] {
		out.Transitions = append(out.Transitions, *t)
	}
	return out, nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, app *models.LoanApplication, to domain.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.apps[app.ApplicationID]
	if !ok {
		return domain.ErrApplicationNotFound
	}
	if !domain.CanTransition(domain.Status(stored.Status), to) {
		return domain.ErrInvalidStatusTransition
	}

	old := stored.Status
	stored.Status = string(to)
	app.Status = string(to)
	f.appendTransition(app.ApplicationID, strPtr(old), string(to))
	return nil
}

func (f *fakeStore) FinalizeDecision(ctx context.Context, app *models.LoanApplication, score int, risk domain.RiskLevel, reason string, to domain.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.apps[app.ApplicationID]
	if !ok {
		return domain.ErrApplicationNotFound
	}
	if stored.Status != string(domain.StatusProcessing) {
		return domain.ErrInvalidStatusTransition
	}

	old := stored.Status
	stored.CreditScore = &score
	stored.RiskLevel = strPtr(string(risk))
	stored.DecisionReason = strPtr(reason)
	stored.Status = string(to)
	app.Status = string(to)
	f.appendTransition(app.ApplicationID, strPtr(old), string(to))
	return nil
}

func (f *fakeStore) ResolveReview(ctx context.Context, app *models.LoanApplication, action *models.ReviewAction, to domain.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.apps[app.ApplicationID]
	if !ok {
		return domain.ErrApplicationNotFound
	}
	if stored.Status != string(domain.StatusManualReview) {
		return domain.ErrNotPendingManualReview
	}

	f.reviews = append(f.reviews, action)
	old := stored.Status
	stored.ReviewedBy = strPtr(action.Officer)
	if action.Notes != "" {
		stored.OfficerNotes = strPtr(action.Notes)
	}
	stored.Status = string(to)
	app.Status = string(to)
	f.appendTransition(app.ApplicationID, strPtr(old), string(to))
	return nil
}

func (f *fakeStore) CountCreatedSince(ctx context.Context, pan string, since time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.countCreatedSinceLocked(pan, since), nil
}

func (f *fakeStore) countCreatedSinceLocked(pan string, since time.Time) int64 {
	var n int64
	for _, app := range f.apps {
		if app.PAN == pan && !app.CreatedAt.Before(since) {
			n++
		}
	}
	return n
}

func (f *fakeStore) List(ctx context.Context, status string, offset, limit int) ([]*models.LoanApplication, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*models.LoanApplication
	for _, app := range f.apps {
		if status == "" || app.Status == status {
			matched = append(matched, cloneApp(app))
		}
	}

	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (f *fakeStore) ListManualReviewOlderThan(ctx context.Context, cutoff time.Time) ([]*models.LoanApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*models.LoanApplication
	for id, app := range f.apps {
		if app.Status != string(domain.StatusManualReview) {
			continue
		}
		history := f.transitions[id]
		if len(history) == 0 {
			continue
		}
		if history[len(history)-1].ChangedAt.Before(cutoff) {
			matched = append(matched, cloneApp(app))
		}
	}
	return matched, nil
}

// TransitionRepository

func (f *fakeStore) GetByApplicationID(ctx context.Context, applicationID string) ([]*models.StatusTransition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*models.StatusTransition
	for _, t := range f.transitions[applicationID] {
		c := *t
		out = append(out, &c)
	}
	return out, nil
}

// CreditProfileRepository

func (f *fakeStore) UpdateScore(ctx context.Context, pan string, windowStart time.Time, fn func(existing *models.CreditProfile, recentApps int64) int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var existing *models.CreditProfile
	if stored, ok := f.profiles[pan]; ok {
		c := *stored
		existing = &c
	}

	score := fn(existing, f.countCreatedSinceLocked(pan, windowStart))

	if stored, ok := f.profiles[pan]; ok {
		stored.CreditScore = score
	} else {
		f.profiles[pan] = &models.CreditProfile{
			ID:          uint(len(f.profiles) + 1),
			PAN:         pan,
			CreditScore: score,
		}
	}
	return score, nil
}

func (f *fakeStore) GetByPAN(ctx context.Context, pan string) (*models.CreditProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.profiles[pan]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *stored
	return &c, nil
}

// seedProfile pins the stored score for a PAN so pipeline outcomes are
// deterministic in tests.
func (f *fakeStore) seedProfile(pan string, score int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[pan] = &models.CreditProfile{PAN: pan, CreditScore: score}
}

func (f *fakeStore) reviewCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reviews)
}
