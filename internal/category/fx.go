package category

import (
	"github.com/vivendahq/vivenda/internal/category/repository"
	"github.com/vivendahq/vivenda/internal/category/service"
	"go.uber.org/fx"
)

var Module = fx.Module("category.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
