// Package repository provides the gorm-backed read aggregates the cycle
// manager depends on.
package repository

import (
	"context"

	"github.com/SyedTahirHussan/codebuff-sub001/internal/config"
	cycledomain "github.com/SyedTahirHussan/codebuff-sub001/internal/cycle/domain"
	grantdomain "github.com/SyedTahirHussan/codebuff-sub001/internal/grant/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Config config.Config
}

type GrantHistory struct {
	db               *gorm.DB
	defaultPrincipal int64
}

func NewGrantHistory(p Params) cycledomain.GrantHistory {
	return &GrantHistory{
		db:               p.DB,
		defaultPrincipal: p.Config.FreeMonthlyCredits,
	}
}

// PreviousFreeGrantPrincipal carries the most recent free grant's principal
// into the next cycle; first-time users fall back to the configured default.
func (h *GrantHistory) PreviousFreeGrantPrincipal(ctx context.Context, userID string) (int64, error) {
	var principals []int64
	err := h.db.WithContext(ctx).Raw(
		`SELECT principal FROM credit_grants
		 WHERE owner_id = ? AND type = ?
		 ORDER BY created_at DESC
		 LIMIT 1`,
		userID,
		grantdomain.GrantTypeFree,
	).Scan(&principals).Error
	if err != nil {
		return 0, err
	}
	if len(principals) == 0 || principals[0] <= 0 {
		return h.defaultPrincipal, nil
	}
	return principals[0], nil
}

type ReferralSource struct {
	db *gorm.DB
}

func NewReferralSource(p Params) cycledomain.ReferralSource {
	return &ReferralSource{db: p.DB}
}

// ActiveReferralBonusTotal sums the principal of unexpired, unrevoked referral
// grants; legacy referral rows are excluded from the recurring bonus.
func (r *ReferralSource) ActiveReferralBonusTotal(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(principal), 0) FROM credit_grants
		 WHERE owner_id = ? AND type = ? AND principal > 0`,
		userID,
		grantdomain.GrantTypeReferral,
	).Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
