package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type CreateGrantRequest struct {
	OwnerID     string     `json:"owner_id"`
	Amount      int64      `json:"amount"`
	Type        GrantType  `json:"type"`
	Description string     `json:"description"`
	ExpiresAt   *time.Time `json:"expires_at"`
	OperationID string     `json:"operation_id"`
}

// GrantResult describes the outcome of a grant call. Granted is false when the
// full amount was absorbed by debt settlement and no row was inserted.
type GrantResult struct {
	OperationID string `json:"operation_id"`
	OwnerID     string `json:"owner_id"`
	Granted     bool   `json:"granted"`
	Balance     int64  `json:"balance"`
	Principal   int64  `json:"principal"`
	DebtCleared int64  `json:"debt_cleared"`
}

type Service interface {
	// Grant settles the owner's outstanding debt and inserts at most one new
	// row, all on the caller-supplied transaction handle.
	Grant(ctx context.Context, tx *gorm.DB, req CreateGrantRequest) (*GrantResult, error)

	// GrantTx is Grant wrapped in its own serializable transaction.
	GrantTx(ctx context.Context, req CreateGrantRequest) (*GrantResult, error)

	// Revoke zeroes principal and balance of the identified grant. It returns
	// false when the grant does not exist or carries debt.
	Revoke(ctx context.Context, operationID, reason string) (bool, error)

	// EligibleGrants returns the owner's unexpired grants in consumption order.
	EligibleGrants(ctx context.Context, tx *gorm.DB, ownerID string, now time.Time) ([]CreditGrant, error)

	FindByOperationID(ctx context.Context, operationID string) (*CreditGrant, error)

	// Balance sums balances across the owner's eligible rows; may be negative.
	Balance(ctx context.Context, ownerID string, now time.Time) (int64, error)

	ListByOwner(ctx context.Context, ownerID string) ([]CreditGrant, error)
}

var (
	ErrInvalidOwner       = errors.New("invalid_owner")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidGrantType   = errors.New("invalid_grant_type")
	ErrInvalidOperationID = errors.New("invalid_operation_id")
	ErrDuplicateOperation = errors.New("duplicate_operation_id")
)
