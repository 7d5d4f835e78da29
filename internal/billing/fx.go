package billing

import (
	"go.uber.org/fx"

	"github.com/vivendahq/vivenda/internal/billing/repository"
	"github.com/vivendahq/vivenda/internal/billing/service"
)

var Module = fx.Module("billing.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
