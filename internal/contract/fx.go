package contract

import (
	"go.uber.org/fx"

	"github.com/vivendahq/vivenda/internal/contract/repository"
	"github.com/vivendahq/vivenda/internal/contract/service"
)

var Module = fx.Module("contract.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
