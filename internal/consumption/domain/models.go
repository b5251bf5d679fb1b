// Package domain contains the consumption engine's request/result types and
// the immutable usage event row.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	grantdomain "github.com/SyedTahirHussan/codebuff-sub001/internal/grant/domain"
	"gorm.io/datatypes"
)

// UsageEvent records one successful consumption call. Exactly one row is
// written per call; failed consumptions write nothing.
type UsageEvent struct {
	ID              snowflake.ID      `gorm:"primaryKey"`
	OwnerID         string            `gorm:"type:text;not null;index:idx_usage_events_owner"`
	UserID          string            `gorm:"type:text"`
	CreditsConsumed int64             `gorm:"not null"`
	Cost            float64           `gorm:"not null;default:0"`
	Model           string            `gorm:"type:text"`
	InputTokens     int64             `gorm:"not null;default:0"`
	OutputTokens    int64             `gorm:"not null;default:0"`
	CacheReadTokens int64             `gorm:"not null;default:0"`
	LatencyMS       int64             `gorm:"not null;default:0"`
	BYOK            bool              `gorm:"column:byok;not null;default:false"`
	Metadata        datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_usage_events_created"`
}

// TableName sets the database table name.
func (UsageEvent) TableName() string { return "usage_events" }

// UsageMetadata travels with a consume call and is echoed onto the event row.
// StartedAt is the caller-observed request start used for latency.
type UsageMetadata struct {
	UserID          string         `json:"user_id"`
	Model           string         `json:"model"`
	InputTokens     int64          `json:"input_tokens"`
	OutputTokens    int64          `json:"output_tokens"`
	CacheReadTokens int64          `json:"cache_read_tokens"`
	Cost            float64        `json:"cost"`
	StartedAt       time.Time      `json:"started_at"`
	BYOK            bool           `json:"byok"`
	Extra           map[string]any `json:"extra,omitempty"`
}

type ConsumeRequest struct {
	OwnerID string        `json:"owner_id"`
	Credits int64         `json:"credits"`
	Usage   UsageMetadata `json:"usage"`
}

// GrantConsumption is one slice of the per-grant breakdown.
type GrantConsumption struct {
	OperationID string                `json:"operation_id"`
	Type        grantdomain.GrantType `json:"type"`
	Consumed    int64                 `json:"consumed"`
	Remaining   int64                 `json:"remaining"`
}

type ConsumeResult struct {
	EventID         snowflake.ID `json:"event_id"`
	OwnerID         string       `json:"owner_id"`
	CreditsConsumed int64        `json:"credits_consumed"`
	// PurchasedConsumed is the portion drawn from purchase-type grants; it is
	// what gets reported to the external metering integration.
	PurchasedConsumed int64              `json:"purchased_consumed"`
	Breakdown         []GrantConsumption `json:"breakdown"`
	OrganizationID    string             `json:"organization_id,omitempty"`
}
