package user

import (
	"github.com/vivendahq/vivenda/internal/user/repository"
	"github.com/vivendahq/vivenda/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
