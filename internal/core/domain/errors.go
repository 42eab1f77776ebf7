package domain

import "errors"

// Common domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInternalServer = errors.New("internal server error")
)

// Application lifecycle errors
var (
	ErrApplicationNotFound     = errors.New("application not found")
	ErrActiveApplicationExists = errors.New("active application already exists for this PAN")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrNotPendingManualReview  = errors.New("application is not pending manual review")
	ErrInvalidReviewAction     = errors.New("action must be 'approve' or 'reject'")
)
