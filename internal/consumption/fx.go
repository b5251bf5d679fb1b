package consumption

import (
	"github.com/SyedTahirHussan/codebuff-sub001/internal/consumption/service"
	"go.uber.org/fx"
)

var Module = fx.Module("consumption.service",
	fx.Provide(service.NewService),
)
