package metering

import (
	"github.com/SyedTahirHussan/codebuff-sub001/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewReporter(cfg config.Config, log *zap.Logger) Reporter {
	if cfg.MeteringWebhookURL != "" {
		return NewWebhookReporter(cfg.MeteringWebhookURL, log)
	}
	return NewLogReporter(log)
}

var Module = fx.Module("metering",
	fx.Provide(NewReporter),
)
