// Package relay publishes chat messages to the external delivery relay over
// Redis pub/sub. The relay owns fan-out; this side only fires the event.
package relay

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	chatdomain "github.com/vivendahq/vivenda/internal/chat/domain"
	"github.com/vivendahq/vivenda/internal/config"
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Log       *zap.Logger
}

type redisPublisher struct {
	client *redis.Client
}

func (p *redisPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	return p.client.Publish(ctx, channel, payload).Err()
}

// nopPublisher keeps chat fully functional when no relay is configured.
type nopPublisher struct{}

func (nopPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	return nil
}

func New(p Params) chatdomain.Publisher {
	if p.Config.RelayRedisAddr == "" {
		p.Log.Named("chat.relay").Info("relay disabled, messages will not be published")
		return nopPublisher{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     p.Config.RelayRedisAddr,
		Password: p.Config.RelayRedisPassword,
		DB:       p.Config.RelayRedisDB,
	})
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return &redisPublisher{client: client}
}
