package cycle

import (
	"github.com/SyedTahirHussan/codebuff-sub001/internal/cycle/repository"
	"github.com/SyedTahirHussan/codebuff-sub001/internal/cycle/service"
	"go.uber.org/fx"
)

var Module = fx.Module("cycle.service",
	fx.Provide(
		repository.NewGrantHistory,
		repository.NewReferralSource,
		service.NewService,
	),
)
