package grant

import (
	"github.com/SyedTahirHussan/codebuff-sub001/internal/grant/service"
	"go.uber.org/fx"
)

var Module = fx.Module("grant.service",
	fx.Provide(service.NewService),
)
