package property

import (
	"github.com/vivendahq/vivenda/internal/property/repository"
	"github.com/vivendahq/vivenda/internal/property/service"
	"go.uber.org/fx"
)

var Module = fx.Module("property.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
