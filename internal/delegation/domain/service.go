package domain

import (
	"context"
	"errors"

	consumptiondomain "github.com/SyedTahirHussan/codebuff-sub001/internal/consumption/domain"
)

type Service interface {
	// ResolveAndConsume redirects a user's consumption to the organization
	// owning the given repository.
	ResolveAndConsume(ctx context.Context, userID, repositoryURL string, credits int64, usage consumptiondomain.UsageMetadata) (*consumptiondomain.ConsumeResult, error)
}

// Lookup resolves a repository to its owning organization; a nil result with
// nil error means no organization claims the repository.
type Lookup interface {
	ByRepository(ctx context.Context, owner, repo string) (*OrganizationRef, error)
}

var (
	ErrNoRepositoryURL        = errors.New("no_repository_url")
	ErrMalformedRepositoryURL = errors.New("malformed_repository_url")
	ErrNoOrganizationFound    = errors.New("no_organization_found")
)
