// Package scheduler sweeps users with due quota resets and triggers the cycle
// manager for each.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/SyedTahirHussan/codebuff-sub001/internal/clock"
	cycledomain "github.com/SyedTahirHussan/codebuff-sub001/internal/cycle/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const sweepLockKey = "credits:quota_reset_sweep"

type Config struct {
	Enabled   bool
	Interval  time.Duration
	BatchSize int
	LockTTL   time.Duration
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = time.Minute
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.LockTTL <= 0 {
		c.LockTTL = 5 * time.Minute
	}
	return c
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Clock    clock.Clock
	CycleSvc cycledomain.Service
	Locker   *Locker `optional:"true"`
	Config   Config
}

type Scheduler struct {
	log      *zap.Logger
	cfg      Config
	clock    clock.Clock
	cycleSvc cycledomain.Service
	locker   *Locker

	done chan struct{}
}

func New(p Params) *Scheduler {
	return &Scheduler{
		log:      p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:      p.Config.withDefaults(),
		clock:    p.Clock,
		cycleSvc: p.CycleSvc,
		locker:   p.Locker,
		done:     make(chan struct{}),
	}
}

// RunOnce performs a single sweep. Per-user failures are joined and returned
// but do not stop the remaining batch.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if s.locker != nil {
		token, ok, err := s.locker.TryLock(ctx, sweepLockKey, s.cfg.LockTTL)
		if err != nil {
			return err
		}
		if !ok {
			s.log.Debug("sweep lock held elsewhere, skipping")
			return nil
		}
		defer func() {
			if err := s.locker.Release(ctx, sweepLockKey, token); err != nil {
				s.log.Warn("failed to release sweep lock", zap.Error(err))
			}
		}()
	}

	now := s.clock.Now()
	userIDs, err := s.cycleSvc.DueUserIDs(ctx, now, s.cfg.BatchSize)
	if err != nil {
		return err
	}
	if len(userIDs) == 0 {
		return nil
	}

	var errs error
	applied := 0
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			errs = errors.Join(errs, ctx.Err())
			break
		}
		result, err := s.cycleSvc.TriggerReset(ctx, userID)
		if err != nil {
			s.log.Warn("quota reset failed",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			errs = errors.Join(errs, err)
			continue
		}
		if result.Applied {
			applied++
		}
	}

	s.log.Info("reset sweep finished",
		zap.Int("due", len(userIDs)),
		zap.Int("applied", applied),
	)
	return errs
}

func (s *Scheduler) start(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.log.Warn("reset sweep returned errors", zap.Error(err))
			}
		}
	}
}

func registerHooks(lc fx.Lifecycle, s *Scheduler) {
	if !s.cfg.Enabled {
		return
	}
	runCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go s.start(runCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			close(s.done)
			return nil
		},
	})
}
