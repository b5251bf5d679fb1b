// Package domain contains repo-to-organization delegation types.
package domain

import (
	"time"
)

// OrgRepository maps a normalized repository URL to its owning organization.
// Read-only from the ledger's perspective.
type OrgRepository struct {
	NormalizedURL string    `gorm:"primaryKey;type:text"`
	OrgID         string    `gorm:"type:text;not null;index"`
	RepoOwner     string    `gorm:"type:text;not null"`
	RepoName      string    `gorm:"type:text;not null"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (OrgRepository) TableName() string { return "org_repositories" }

type OrganizationRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}
