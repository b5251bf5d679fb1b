package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	// TriggerReset applies the user's monthly quota reset, or no-ops when the
	// next reset is still in the future.
	TriggerReset(ctx context.Context, userID string) (*ResetResult, error)

	// DueUserIDs lists users whose reset date has passed, for the sweep job.
	DueUserIDs(ctx context.Context, now time.Time, limit int) ([]string, error)
}

// GrantHistory reads the prior free-grant principal carried into the next
// cycle. External read dependency of the reset computation.
type GrantHistory interface {
	PreviousFreeGrantPrincipal(ctx context.Context, userID string) (int64, error)
}

// ReferralSource aggregates the user's active referral bonuses.
type ReferralSource interface {
	ActiveReferralBonusTotal(ctx context.Context, userID string) (int64, error)
}

// ErrOwnerNotFound indicates the caller passed a user that does not exist: a
// precondition violation, not a business outcome. Handlers surface it as an
// internal error rather than a typed failure.
var ErrOwnerNotFound = errors.New("owner_not_found")

var ErrInvalidUser = errors.New("invalid_user")
