package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spsc-loanstp/internal/adapters/persistence/models"
	"spsc-loanstp/internal/core/domain"
	"spsc-loanstp/internal/core/services"
)

// submitForReview pushes an application through the pipeline into
// manual_review.
func submitForReview(t *testing.T, store *fakeStore) *models.LoanApplication {
	t.Helper()

	store.seedProfile("ABCDE1234F", 580)
	svc := newApplicationService(store)

	app, _, err := svc.Submit(context.Background(), validInput("ABCDE1234F"))
	require.NoError(t, err)
	require.Equal(t, string(domain.StatusManualReview), app.Status)
	return app
}

func TestResolveApprove(t *testing.T) {
	store := newFakeStore()
	app := submitForReview(t, store)
	svc := services.NewReviewService(store, nil)

	resolved, err := svc.Resolve(context.Background(), app.ApplicationID, &services.ResolveInput{
		Action:  "approve",
		Officer: "officer.rao",
		Notes:   "Income documents verified",
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusApproved), resolved.Status)
	require.NotNil(t, resolved.ReviewedBy)
	assert.Equal(t, "officer.rao", *resolved.ReviewedBy)
	require.NotNil(t, resolved.OfficerNotes)
	assert.Equal(t, "Income documents verified", *resolved.OfficerNotes)

	require.Len(t, resolved.Transitions, 4)
	last := resolved.Transitions[3]
	assert.Equal(t, "manual_review", *last.OldStatus)
	assert.Equal(t, "approved", last.NewStatus)

	assert.Equal(t, 1, store.reviewCount())
}

func TestResolveReject(t *testing.T) {
	store := newFakeStore()
	app := submitForReview(t, store)
	svc := services.NewReviewService(store, nil)

	resolved, err := svc.Resolve(context.Background(), app.ApplicationID, &services.ResolveInput{
		Action:  "REJECT",
		Officer: "officer.rao",
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusRejected), resolved.Status)
}

func TestResolveNotFound(t *testing.T) {
	store := newFakeStore()
	svc := services.NewReviewService(store, nil)

	_, err := svc.Resolve(context.Background(), "ln_000000000000", &services.ResolveInput{
		Action:  "approve",
		Officer: "officer.rao",
	})
	assert.ErrorIs(t, err, domain.ErrApplicationNotFound)
}

func TestResolveInvalidAction(t *testing.T) {
	store := newFakeStore()
	app := submitForReview(t, store)
	svc := services.NewReviewService(store, nil)

	_, err := svc.Resolve(context.Background(), app.ApplicationID, &services.ResolveInput{
		Action:  "escalate",
		Officer: "officer.rao",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidReviewAction)
	assert.Equal(t, 0, store.reviewCount())
}

func TestResolveNotPendingManualReview(t *testing.T) {
	store := newFakeStore()
	store.seedProfile("ABCDE1234F", 700)
	appSvc := newApplicationService(store)

	app, _, err := appSvc.Submit(context.Background(), validInput("ABCDE1234F"))
	require.NoError(t, err)
	require.Equal(t, string(domain.StatusApproved), app.Status)

	svc := services.NewReviewService(store, nil)
	_, err = svc.Resolve(context.Background(), app.ApplicationID, &services.ResolveInput{
		Action:  "approve",
		Officer: "officer.rao",
	})
	assert.ErrorIs(t, err, domain.ErrNotPendingManualReview)
}

func TestResolveTwiceFailsWithoutSecondAudit(t *testing.T) {
	store := newFakeStore()
	app := submitForReview(t, store)
	svc := services.NewReviewService(store, nil)

	input := &services.ResolveInput{Action: "approve", Officer: "officer.rao"}

	_, err := svc.Resolve(context.Background(), app.ApplicationID, input)
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), app.ApplicationID, input)
	assert.ErrorIs(t, err, domain.ErrNotPendingManualReview)
	assert.Equal(t, 1, store.reviewCount())
}
