package domain

import (
	"context"
	"errors"

	"github.com/SyedTahirHussan/codebuff-sub001/pkg/db/pagination"
)

type ListUsageRequest struct {
	OwnerID   string `json:"owner_id"`
	PageToken string `json:"page_token"`
	PageSize  int    `json:"page_size"`
}

type ListUsageResponse struct {
	pagination.PageInfo
	UsageEvents []UsageEvent `json:"usage_events"`
}

type Service interface {
	Consume(context.Context, ConsumeRequest) (*ConsumeResult, error)
	List(context.Context, ListUsageRequest) (ListUsageResponse, error)
}

var (
	ErrInvalidOwner       = errors.New("invalid_owner")
	ErrInvalidCredits     = errors.New("invalid_credits")
	ErrInsufficientGrants = errors.New("insufficient_grants")
)
