// Package repository implements the org-by-repository lookup over the
// org_repositories read model.
package repository

import (
	"context"
	"strings"

	delegationdomain "github.com/SyedTahirHussan/codebuff-sub001/internal/delegation/domain"
	"github.com/SyedTahirHussan/codebuff-sub001/pkg/repository"
	"gorm.io/gorm"
)

type Lookup struct {
	repo repository.Repository[delegationdomain.OrgRepository]
}

func NewLookup(db *gorm.DB) delegationdomain.Lookup {
	return &Lookup{repo: repository.ProvideStore[delegationdomain.OrgRepository](db)}
}

func (l *Lookup) ByRepository(ctx context.Context, owner, repo string) (*delegationdomain.OrganizationRef, error) {
	row, err := l.repo.FindOne(ctx, &delegationdomain.OrgRepository{
		RepoOwner: strings.ToLower(owner),
		RepoName:  strings.ToLower(repo),
	})
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	return &delegationdomain.OrganizationRef{ID: row.OrgID}, nil
}
