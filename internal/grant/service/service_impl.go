package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	grantdomain "github.com/SyedTahirHussan/codebuff-sub001/internal/grant/domain"
	obsmetrics "github.com/SyedTahirHussan/codebuff-sub001/internal/observability/metrics"
	"github.com/SyedTahirHussan/codebuff-sub001/pkg/db"
	"github.com/SyedTahirHussan/codebuff-sub001/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	grantrepo  repository.Repository[grantdomain.CreditGrant]
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) grantdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("grant.service"),
		grantrepo:  repository.ProvideStore[grantdomain.CreditGrant](p.DB),
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) Grant(ctx context.Context, tx *gorm.DB, req grantdomain.CreateGrantRequest) (*grantdomain.GrantResult, error) {
	if strings.TrimSpace(req.OwnerID) == "" {
		return nil, grantdomain.ErrInvalidOwner
	}
	if req.Amount <= 0 {
		return nil, grantdomain.ErrInvalidAmount
	}
	if !req.Type.Valid() {
		return nil, grantdomain.ErrInvalidGrantType
	}
	operationID := strings.TrimSpace(req.OperationID)
	if operationID == "" {
		return nil, grantdomain.ErrInvalidOperationID
	}

	now := time.Now().UTC()

	totalDebt, err := s.settleDebt(ctx, tx, req.OwnerID, operationID, now)
	if err != nil {
		return nil, err
	}

	result := &grantdomain.GrantResult{
		OperationID: operationID,
		OwnerID:     req.OwnerID,
		Principal:   req.Amount,
		DebtCleared: totalDebt,
	}

	remaining := req.Amount - totalDebt
	if remaining <= 0 {
		// The whole grant went to debt relief; no new row.
		s.log.Info("grant fully absorbed by debt settlement",
			zap.String("owner_id", req.OwnerID),
			zap.String("operation_id", operationID),
			zap.Int64("amount", req.Amount),
			zap.Int64("debt_cleared", totalDebt),
		)
		return result, nil
	}

	description := req.Description
	if totalDebt > 0 {
		description = fmt.Sprintf("%s (%d credits applied to outstanding debt)", description, totalDebt)
	}

	row := grantdomain.CreditGrant{
		OperationID: operationID,
		OwnerID:     req.OwnerID,
		Type:        req.Type,
		Priority:    req.Type.Priority(),
		Principal:   req.Amount,
		Balance:     remaining,
		ExpiresAt:   req.ExpiresAt,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, grantdomain.ErrDuplicateOperation
		}
		return nil, err
	}

	result.Granted = true
	result.Balance = remaining

	if s.obsMetrics != nil {
		s.obsMetrics.RecordGrant(ctx, string(req.Type), req.Amount)
		if totalDebt > 0 {
			s.obsMetrics.RecordDebtCleared(ctx, totalDebt)
		}
	}
	return result, nil
}

func (s *Service) GrantTx(ctx context.Context, req grantdomain.CreateGrantRequest) (*grantdomain.GrantResult, error) {
	var result *grantdomain.GrantResult
	err := db.RunSerializable(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		result, err = s.Grant(ctx, tx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// settleDebt zeroes every negative-balance row of the owner and returns the
// total forgiven. Debt is always cleared in full when any new grant is issued,
// even one smaller than the debt.
func (s *Service) settleDebt(ctx context.Context, tx *gorm.DB, ownerID, operationID string, now time.Time) (int64, error) {
	var totalDebt int64
	err := tx.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(-balance), 0)
		 FROM credit_grants
		 WHERE owner_id = ? AND balance < 0`,
		ownerID,
	).Scan(&totalDebt).Error
	if err != nil {
		return 0, err
	}
	if totalDebt == 0 {
		return 0, nil
	}

	note := fmt.Sprintf(" (Debt cleared by grant %s)", operationID)
	err = tx.WithContext(ctx).Exec(
		`UPDATE credit_grants
		 SET balance = 0,
		     description = description || ?,
		     updated_at = ?
		 WHERE owner_id = ? AND balance < 0`,
		note,
		now,
		ownerID,
	).Error
	if err != nil {
		return 0, err
	}
	return totalDebt, nil
}

func (s *Service) Revoke(ctx context.Context, operationID, reason string) (bool, error) {
	operationID = strings.TrimSpace(operationID)
	if operationID == "" {
		return false, grantdomain.ErrInvalidOperationID
	}

	revoked := false
	err := db.RunSerializable(ctx, s.db, func(tx *gorm.DB) error {
		revoked = false

		var row grantdomain.CreditGrant
		res := tx.WithContext(ctx).Where("operation_id = ?", operationID).Limit(1).Find(&row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		// Debt cannot be revoked: there is nothing positive to take back.
		if row.Balance < 0 {
			return nil
		}

		note := fmt.Sprintf(" (Revoked: %s)", reason)
		if err := tx.WithContext(ctx).Exec(
			`UPDATE credit_grants
			 SET principal = 0,
			     balance = 0,
			     description = description || ?,
			     updated_at = ?
			 WHERE operation_id = ?`,
			note,
			time.Now().UTC(),
			operationID,
		).Error; err != nil {
			return err
		}
		revoked = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if revoked {
		s.log.Info("grant revoked",
			zap.String("operation_id", operationID),
			zap.String("reason", reason),
		)
	}
	return revoked, nil
}

func (s *Service) EligibleGrants(ctx context.Context, tx *gorm.DB, ownerID string, now time.Time) ([]grantdomain.CreditGrant, error) {
	if tx == nil {
		tx = s.db
	}
	var grants []grantdomain.CreditGrant
	err := tx.WithContext(ctx).Raw(
		`SELECT * FROM credit_grants
		 WHERE owner_id = ? AND (expires_at IS NULL OR expires_at > ?)
		 ORDER BY priority ASC, (expires_at IS NULL) ASC, expires_at ASC, created_at ASC`,
		ownerID,
		now,
	).Scan(&grants).Error
	if err != nil {
		return nil, err
	}
	return grants, nil
}

func (s *Service) FindByOperationID(ctx context.Context, operationID string) (*grantdomain.CreditGrant, error) {
	var row grantdomain.CreditGrant
	res := s.db.WithContext(ctx).Where("operation_id = ?", operationID).Limit(1).Find(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &row, nil
}

func (s *Service) Balance(ctx context.Context, ownerID string, now time.Time) (int64, error) {
	var balance int64
	err := s.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(balance), 0)
		 FROM credit_grants
		 WHERE owner_id = ? AND (expires_at IS NULL OR expires_at > ?)`,
		ownerID,
		now,
	).Scan(&balance).Error
	return balance, err
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]grantdomain.CreditGrant, error) {
	grants, err := s.grantrepo.Find(ctx, &grantdomain.CreditGrant{OwnerID: ownerID})
	if err != nil {
		return nil, err
	}
	out := make([]grantdomain.CreditGrant, 0, len(grants))
	for _, g := range grants {
		out = append(out, *g)
	}
	return out, nil
}
