package sale

import (
	"go.uber.org/fx"

	"github.com/vivendahq/vivenda/internal/sale/repository"
	"github.com/vivendahq/vivenda/internal/sale/service"
)

var Module = fx.Module("sale.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
