package service

import (
	"context"
	"strings"

	consumptiondomain "github.com/SyedTahirHussan/codebuff-sub001/internal/consumption/domain"
	delegationdomain "github.com/SyedTahirHussan/codebuff-sub001/internal/delegation/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Log        *zap.Logger
	Lookup     delegationdomain.Lookup
	ConsumeSvc consumptiondomain.Service
}

type Service struct {
	log        *zap.Logger
	lookup     delegationdomain.Lookup
	consumeSvc consumptiondomain.Service
}

func NewService(p ServiceParam) delegationdomain.Service {
	return &Service{
		log:        p.Log.Named("delegation.service"),
		lookup:     p.Lookup,
		consumeSvc: p.ConsumeSvc,
	}
}

func (s *Service) ResolveAndConsume(ctx context.Context, userID, repositoryURL string, credits int64, usage consumptiondomain.UsageMetadata) (*consumptiondomain.ConsumeResult, error) {
	if strings.TrimSpace(repositoryURL) == "" {
		return nil, delegationdomain.ErrNoRepositoryURL
	}

	normalized, ok := NormalizeRepoURL(repositoryURL)
	if !ok {
		return nil, delegationdomain.ErrMalformedRepositoryURL
	}

	org, err := s.lookup.ByRepository(ctx, normalized.Owner, normalized.Repo)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, delegationdomain.ErrNoOrganizationFound
	}

	usage.UserID = userID
	result, err := s.consumeSvc.Consume(ctx, consumptiondomain.ConsumeRequest{
		OwnerID: org.ID,
		Credits: credits,
		Usage:   usage,
	})
	if err != nil {
		return nil, err
	}

	result.OrganizationID = org.ID
	s.log.Debug("consumption delegated to organization",
		zap.String("user_id", userID),
		zap.String("organization_id", org.ID),
		zap.String("repository", normalized.URL),
	)
	return result, nil
}
