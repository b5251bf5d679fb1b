package service

import (
	"context"
	"strings"
	"time"

	"github.com/SyedTahirHussan/codebuff-sub001/internal/analytics"
	"github.com/SyedTahirHussan/codebuff-sub001/internal/clock"
	consumptiondomain "github.com/SyedTahirHussan/codebuff-sub001/internal/consumption/domain"
	grantdomain "github.com/SyedTahirHussan/codebuff-sub001/internal/grant/domain"
	"github.com/SyedTahirHussan/codebuff-sub001/internal/metering"
	obsmetrics "github.com/SyedTahirHussan/codebuff-sub001/internal/observability/metrics"
	"github.com/SyedTahirHussan/codebuff-sub001/pkg/db"
	"github.com/SyedTahirHussan/codebuff-sub001/pkg/db/option"
	"github.com/SyedTahirHussan/codebuff-sub001/pkg/db/pagination"
	"github.com/SyedTahirHussan/codebuff-sub001/pkg/repository"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	GrantSvc   grantdomain.Service
	Reporter   metering.Reporter   `optional:"true"`
	Tracker    analytics.Tracker   `optional:"true"`
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID      *snowflake.Node
	clock      clock.Clock
	grantSvc   grantdomain.Service
	usagerepo  repository.Repository[consumptiondomain.UsageEvent]
	reporter   metering.Reporter
	tracker    analytics.Tracker
	obsMetrics *obsmetrics.Metrics
}

func NewService(p ServiceParam) consumptiondomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("consumption.service"),

		genID:      p.GenID,
		clock:      p.Clock,
		grantSvc:   p.GrantSvc,
		usagerepo:  repository.ProvideStore[consumptiondomain.UsageEvent](p.DB),
		reporter:   p.Reporter,
		tracker:    p.Tracker,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) Consume(ctx context.Context, req consumptiondomain.ConsumeRequest) (*consumptiondomain.ConsumeResult, error) {
	if strings.TrimSpace(req.OwnerID) == "" {
		return nil, consumptiondomain.ErrInvalidOwner
	}
	if req.Credits <= 0 {
		return nil, consumptiondomain.ErrInvalidCredits
	}

	if req.Usage.BYOK {
		return s.consumeBYOK(ctx, req)
	}

	var result *consumptiondomain.ConsumeResult
	err := db.RunSerializable(ctx, s.db, func(tx *gorm.DB) error {
		now := s.clock.Now()

		grants, err := s.grantSvc.EligibleGrants(ctx, tx, req.OwnerID, now)
		if err != nil {
			return err
		}
		if len(grants) == 0 {
			return consumptiondomain.ErrInsufficientGrants
		}

		breakdown, err := s.drainGrants(ctx, tx, grants, req.Credits, now)
		if err != nil {
			return err
		}

		event := s.buildEvent(req, req.Credits, now)
		if err := tx.WithContext(ctx).Create(event).Error; err != nil {
			return err
		}

		purchased := int64(0)
		for _, slice := range breakdown {
			if slice.Type == grantdomain.GrantTypePurchase {
				purchased += slice.Consumed
			}
		}

		// Rebuilt on every attempt: the wrapper may retry the whole callback.
		result = &consumptiondomain.ConsumeResult{
			EventID:           event.ID,
			OwnerID:           req.OwnerID,
			CreditsConsumed:   req.Credits,
			PurchasedConsumed: purchased,
			Breakdown:         breakdown,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterConsume(ctx, result, req)
	return result, nil
}

// drainGrants walks the ordered set deducting up to credits. Any shortfall is
// applied to the last grant processed, driving that single row negative rather
// than fragmenting debt.
func (s *Service) drainGrants(ctx context.Context, tx *gorm.DB, grants []grantdomain.CreditGrant, credits int64, now time.Time) ([]consumptiondomain.GrantConsumption, error) {
	remaining := credits
	breakdown := make([]consumptiondomain.GrantConsumption, 0, len(grants))

	for i := range grants {
		if remaining <= 0 {
			break
		}
		g := &grants[i]

		delta := g.Balance
		if delta > remaining {
			delta = remaining
		}
		if delta < 0 {
			delta = 0
		}

		if i == len(grants)-1 {
			// Last eligible row absorbs the shortfall as debt.
			delta = remaining
		}

		g.Balance -= delta
		remaining -= delta

		if delta == 0 {
			continue
		}
		if err := tx.WithContext(ctx).Exec(
			`UPDATE credit_grants SET balance = ?, updated_at = ? WHERE operation_id = ?`,
			g.Balance,
			now,
			g.OperationID,
		).Error; err != nil {
			return nil, err
		}
		breakdown = append(breakdown, consumptiondomain.GrantConsumption{
			OperationID: g.OperationID,
			Type:        g.Type,
			Consumed:    delta,
			Remaining:   g.Balance,
		})
	}

	return breakdown, nil
}

func (s *Service) consumeBYOK(ctx context.Context, req consumptiondomain.ConsumeRequest) (*consumptiondomain.ConsumeResult, error) {
	now := s.clock.Now()

	// BYOK bypasses the ledger: no grant rows are read or written and the
	// event carries zero consumed credits. The nominal request value is kept
	// in metadata for analytics.
	event := s.buildEvent(req, 0, now)
	if event.Metadata == nil {
		event.Metadata = datatypes.JSONMap{}
	}
	event.Metadata["requested_credits"] = req.Credits

	err := db.RunSerializable(ctx, s.db, func(tx *gorm.DB) error {
		return tx.WithContext(ctx).Create(event).Error
	})
	if err != nil {
		return nil, err
	}

	result := &consumptiondomain.ConsumeResult{
		EventID:         event.ID,
		OwnerID:         req.OwnerID,
		CreditsConsumed: 0,
	}
	s.afterConsume(ctx, result, req)
	return result, nil
}

func (s *Service) buildEvent(req consumptiondomain.ConsumeRequest, consumed int64, now time.Time) *consumptiondomain.UsageEvent {
	latency := int64(0)
	if !req.Usage.StartedAt.IsZero() {
		latency = now.Sub(req.Usage.StartedAt).Milliseconds()
		if latency < 0 {
			latency = 0
		}
	}

	var metadata datatypes.JSONMap
	if req.Usage.Extra != nil {
		metadata = datatypes.JSONMap(req.Usage.Extra)
	}

	return &consumptiondomain.UsageEvent{
		ID:              s.genID.Generate(),
		OwnerID:         req.OwnerID,
		UserID:          req.Usage.UserID,
		CreditsConsumed: consumed,
		Cost:            req.Usage.Cost,
		Model:           req.Usage.Model,
		InputTokens:     req.Usage.InputTokens,
		OutputTokens:    req.Usage.OutputTokens,
		CacheReadTokens: req.Usage.CacheReadTokens,
		LatencyMS:       latency,
		BYOK:            req.Usage.BYOK,
		Metadata:        metadata,
		CreatedAt:       now,
	}
}

// afterConsume runs the external side effects once the transaction committed.
// Neither the metering report nor analytics may fail the ledger operation.
func (s *Service) afterConsume(ctx context.Context, result *consumptiondomain.ConsumeResult, req consumptiondomain.ConsumeRequest) {
	if s.obsMetrics != nil {
		s.obsMetrics.RecordConsumption(ctx, result.CreditsConsumed, req.Usage.BYOK)
	}

	if s.reporter != nil && result.PurchasedConsumed > 0 {
		if err := s.reporter.ReportPurchasedUsage(ctx, metering.PurchasedUsage{
			OwnerID: result.OwnerID,
			Amount:  result.PurchasedConsumed,
			Metadata: map[string]any{
				"event_id": result.EventID.String(),
				"model":    req.Usage.Model,
			},
		}); err != nil {
			s.log.Warn("failed to report purchased usage",
				zap.String("owner_id", result.OwnerID),
				zap.Int64("amount", result.PurchasedConsumed),
				zap.Error(err),
			)
		}
	}

	if s.tracker != nil {
		go s.tracker.Track(context.WithoutCancel(ctx), analytics.Event{
			Name:    "credits.consumed",
			OwnerID: result.OwnerID,
			Properties: map[string]any{
				"event_id":           result.EventID.String(),
				"credits_consumed":   result.CreditsConsumed,
				"purchased_consumed": result.PurchasedConsumed,
				"byok":               req.Usage.BYOK,
				"model":              req.Usage.Model,
			},
		})
	}
}

func (s *Service) List(ctx context.Context, req consumptiondomain.ListUsageRequest) (consumptiondomain.ListUsageResponse, error) {
	if strings.TrimSpace(req.OwnerID) == "" {
		return consumptiondomain.ListUsageResponse{}, consumptiondomain.ErrInvalidOwner
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	if pageSize > 250 {
		pageSize = 250
	}

	items, err := s.usagerepo.Find(ctx, &consumptiondomain.UsageEvent{OwnerID: req.OwnerID},
		option.ApplyPagination(pagination.Pagination{
			PageToken: req.PageToken,
			PageSize:  pageSize,
		}),
	)
	if err != nil {
		return consumptiondomain.ListUsageResponse{}, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(e *consumptiondomain.UsageEvent) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        e.ID.String(),
			CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		return token
	})

	events := make([]consumptiondomain.UsageEvent, 0, len(items))
	for _, item := range items {
		events = append(events, *item)
	}
	return consumptiondomain.ListUsageResponse{
		PageInfo:    pageInfo,
		UsageEvents: events,
	}, nil
}
