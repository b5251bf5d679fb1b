// Package domain contains the per-user quota cycle state.
package domain

import (
	"time"
)

// User carries the rolling quota-reset state. Organizations receive delegated
// consumption only and have no reset cycle.
type User struct {
	ID               string     `gorm:"primaryKey;type:text"`
	NextQuotaReset   *time.Time `gorm:"index"`
	AutoTopupEnabled *bool      `gorm:""`
	CreatedAt        time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

type ResetResult struct {
	AutoTopupEnabled bool      `json:"auto_topup_enabled"`
	QuotaResetDate   time.Time `json:"quota_reset_date"`
	// Applied is false when the call was an idempotent no-op because the next
	// reset is still in the future.
	Applied bool `json:"applied"`
}
