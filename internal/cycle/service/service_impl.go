package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SyedTahirHussan/codebuff-sub001/internal/clock"
	cycledomain "github.com/SyedTahirHussan/codebuff-sub001/internal/cycle/domain"
	grantdomain "github.com/SyedTahirHussan/codebuff-sub001/internal/grant/domain"
	obsmetrics "github.com/SyedTahirHussan/codebuff-sub001/internal/observability/metrics"
	"github.com/SyedTahirHussan/codebuff-sub001/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	Clock          clock.Clock
	GrantSvc       grantdomain.Service
	GrantHistory   cycledomain.GrantHistory
	ReferralSource cycledomain.ReferralSource
	ObsMetrics     *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	clock          clock.Clock
	grantSvc       grantdomain.Service
	grantHistory   cycledomain.GrantHistory
	referralSource cycledomain.ReferralSource
	obsMetrics     *obsmetrics.Metrics
}

func NewService(p ServiceParam) cycledomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("cycle.service"),

		clock:          p.Clock,
		grantSvc:       p.GrantSvc,
		grantHistory:   p.GrantHistory,
		referralSource: p.ReferralSource,
		obsMetrics:     p.ObsMetrics,
	}
}

func (s *Service) TriggerReset(ctx context.Context, userID string) (*cycledomain.ResetResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, cycledomain.ErrInvalidUser
	}

	var result *cycledomain.ResetResult
	err := db.RunSerializable(ctx, s.db, func(tx *gorm.DB) error {
		now := s.clock.Now()

		var user cycledomain.User
		res := tx.WithContext(ctx).Where("id = ?", userID).Limit(1).Find(&user)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return cycledomain.ErrOwnerNotFound
		}

		autoTopup := false
		if user.AutoTopupEnabled != nil {
			autoTopup = *user.AutoTopupEnabled
		}

		if user.NextQuotaReset != nil && user.NextQuotaReset.After(now) {
			result = &cycledomain.ResetResult{
				AutoTopupEnabled: autoTopup,
				QuotaResetDate:   *user.NextQuotaReset,
				Applied:          false,
			}
			return nil
		}

		nextReset := nextResetDate(user.NextQuotaReset, now)

		amount, err := s.resetAmount(ctx, userID)
		if err != nil {
			return err
		}

		_, err = s.grantSvc.Grant(ctx, tx, grantdomain.CreateGrantRequest{
			OwnerID:     userID,
			Amount:      amount,
			Type:        grantdomain.GrantTypeFree,
			Description: fmt.Sprintf("Monthly quota reset (%s)", nextReset.Format("2006-01")),
			ExpiresAt:   &nextReset,
			OperationID: cycleOperationID(userID, nextReset),
		})
		if err != nil {
			// A concurrent retry already issued this cycle's grant; the
			// deterministic operation id makes that safe to treat as done.
			if !errors.Is(err, grantdomain.ErrDuplicateOperation) {
				return err
			}
			s.log.Info("cycle grant already issued",
				zap.String("user_id", userID),
				zap.Time("quota_reset", nextReset),
			)
		}

		if err := tx.WithContext(ctx).Exec(
			`UPDATE users SET next_quota_reset = ?, updated_at = ? WHERE id = ?`,
			nextReset,
			now,
			userID,
		).Error; err != nil {
			return err
		}

		result = &cycledomain.ResetResult{
			AutoTopupEnabled: autoTopup,
			QuotaResetDate:   nextReset,
			Applied:          true,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Applied {
		if s.obsMetrics != nil {
			s.obsMetrics.RecordQuotaReset(ctx)
		}
		s.log.Info("quota reset applied",
			zap.String("user_id", userID),
			zap.Time("quota_reset", result.QuotaResetDate),
		)
	}
	return result, nil
}

// nextResetDate walks forward whole calendar months from the stored reset (or
// now, for a first reset) until strictly after now. A long-dormant user skips
// all missed cycles in one call.
func nextResetDate(stored *time.Time, now time.Time) time.Time {
	next := now
	if stored != nil {
		next = *stored
	}
	for !next.After(now) {
		next = next.AddDate(0, 1, 0)
	}
	return next
}

func cycleOperationID(userID string, reset time.Time) string {
	return fmt.Sprintf("free-%s-%s", userID, reset.UTC().Format("2006-01"))
}

func (s *Service) resetAmount(ctx context.Context, userID string) (int64, error) {
	principal, err := s.grantHistory.PreviousFreeGrantPrincipal(ctx, userID)
	if err != nil {
		return 0, err
	}
	referral, err := s.referralSource.ActiveReferralBonusTotal(ctx, userID)
	if err != nil {
		return 0, err
	}
	return principal + referral, nil
}

func (s *Service) DueUserIDs(ctx context.Context, now time.Time, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}
	var ids []string
	err := s.db.WithContext(ctx).Raw(
		`SELECT id FROM users
		 WHERE next_quota_reset IS NOT NULL AND next_quota_reset <= ?
		 ORDER BY next_quota_reset ASC
		 LIMIT ?`,
		now,
		limit,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
