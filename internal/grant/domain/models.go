// Package domain contains the credit grant ledger rows and their invariants.
package domain

import (
	"time"
)

// GrantType categorizes where a grant came from. The ledger is indifferent to
// the category except for GrantTypePurchase, whose consumed portion is reported
// to the external metering integration.
type GrantType string

const (
	GrantTypeFree           GrantType = "free"
	GrantTypeReferral       GrantType = "referral"
	GrantTypeReferralLegacy GrantType = "referral_legacy"
	GrantTypeOrganization   GrantType = "organization"
	GrantTypeAdmin          GrantType = "admin"
	GrantTypePurchase       GrantType = "purchase"
)

// Priority ranks consumption order: lower values drain first. Expiring and
// promotional credit sits below purchased credit so paid balance survives
// longest.
func (t GrantType) Priority() int32 {
	switch t {
	case GrantTypeFree:
		return 20
	case GrantTypeReferral, GrantTypeReferralLegacy:
		return 30
	case GrantTypeOrganization:
		return 40
	case GrantTypeAdmin:
		return 50
	case GrantTypePurchase:
		return 80
	default:
		return 50
	}
}

func (t GrantType) Valid() bool {
	switch t {
	case GrantTypeFree, GrantTypeReferral, GrantTypeReferralLegacy,
		GrantTypeOrganization, GrantTypeAdmin, GrantTypePurchase:
		return true
	default:
		return false
	}
}

// CreditGrant is a single ledger row. Rows are never deleted: revocation zeroes
// them and expiry only excludes them from consumption eligibility.
type CreditGrant struct {
	// OperationID is the caller-supplied idempotency key and is unique across
	// all grants for all time.
	OperationID string     `gorm:"primaryKey;type:text"`
	OwnerID     string     `gorm:"type:text;not null;index:idx_credit_grants_owner"`
	Type        GrantType  `gorm:"type:text;not null"`
	Priority    int32      `gorm:"not null"`
	Principal   int64      `gorm:"not null"`
	Balance     int64      `gorm:"not null"`
	ExpiresAt   *time.Time `gorm:"index"`
	Description string     `gorm:"type:text;not null;default:''"`
	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (CreditGrant) TableName() string { return "credit_grants" }

// Eligible reports whether the grant participates in consumption at the given
// instant. Expired rows stay on the ledger for audit but never drain.
func (g CreditGrant) Eligible(now time.Time) bool {
	return g.ExpiresAt == nil || g.ExpiresAt.After(now)
}
