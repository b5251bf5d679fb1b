package delegation

import (
	"github.com/SyedTahirHussan/codebuff-sub001/internal/delegation/repository"
	"github.com/SyedTahirHussan/codebuff-sub001/internal/delegation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("delegation.service",
	fx.Provide(
		repository.NewLookup,
		service.NewService,
	),
)
