package metrics

import (
	"github.com/SyedTahirHussan/codebuff-sub001/internal/config"
	"go.uber.org/fx"
)

func NewConfig(appCfg config.Config) Config {
	return Config{
		Enabled:          appCfg.MetricsEnabled,
		ExporterEndpoint: appCfg.MetricsEndpoint,
		ExporterProtocol: appCfg.MetricsExporter,
		ServiceName:      appCfg.AppName,
		Environment:      appCfg.Environment,
	}
}

var Module = fx.Module("observability.metrics",
	fx.Provide(
		NewConfig,
		NewProvider,
		New,
	),
)
