package chat

import (
	"go.uber.org/fx"

	"github.com/vivendahq/vivenda/internal/chat/relay"
	"github.com/vivendahq/vivenda/internal/chat/repository"
	"github.com/vivendahq/vivenda/internal/chat/service"
)

var Module = fx.Module("chat.service",
	fx.Provide(relay.New),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
