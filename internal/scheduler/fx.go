package scheduler

import (
	"github.com/SyedTahirHussan/codebuff-sub001/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

func NewConfig(appCfg config.Config) Config {
	return Config{
		Enabled:   appCfg.SchedulerEnabled,
		Interval:  appCfg.SchedulerInterval,
		BatchSize: appCfg.SchedulerBatchSize,
		LockTTL:   appCfg.SchedulerLockTTL,
	}
}

// NewRedisClient returns nil when no Redis address is configured; the sweep
// then runs unguarded, which is fine for single-instance deployments.
func NewRedisClient(appCfg config.Config) *redis.Client {
	if appCfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     appCfg.RedisAddr,
		Password: appCfg.RedisPassword,
	})
}

var Module = fx.Module("scheduler",
	fx.Provide(
		NewConfig,
		NewRedisClient,
		NewLocker,
		New,
	),
	fx.Invoke(registerHooks),
)
