package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/vivendahq/vivenda/internal/config"
	"github.com/vivendahq/vivenda/internal/migration"
	"github.com/vivendahq/vivenda/internal/server"
	"github.com/vivendahq/vivenda/pkg/db"
	"github.com/vivendahq/vivenda/pkg/log"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
