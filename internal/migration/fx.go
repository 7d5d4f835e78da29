package migration

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	billingdomain "github.com/vivendahq/vivenda/internal/billing/domain"
	categorydomain "github.com/vivendahq/vivenda/internal/category/domain"
	chatdomain "github.com/vivendahq/vivenda/internal/chat/domain"
	"github.com/vivendahq/vivenda/internal/config"
	contractdomain "github.com/vivendahq/vivenda/internal/contract/domain"
	propertydomain "github.com/vivendahq/vivenda/internal/property/domain"
	saledomain "github.com/vivendahq/vivenda/internal/sale/domain"
	"github.com/vivendahq/vivenda/internal/seed"
	userdomain "github.com/vivendahq/vivenda/internal/user/domain"
)

// Module applies the schema and seeds the base data on startup.
var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, node *snowflake.Node, log *zap.Logger) error {
		if cfg.DBType == "sqlite" {
			// The versioned migrations target postgres; local sqlite
			// databases take the schema straight from the models.
			if err := conn.AutoMigrate(
				&userdomain.User{},
				&categorydomain.Category{},
				&propertydomain.Property{},
				&propertydomain.PropertyImage{},
				&contractdomain.Contract{},
				&saledomain.Sale{},
				&billingdomain.Bill{},
				&billingdomain.Payment{},
				&chatdomain.Conversation{},
				&chatdomain.Message{},
			); err != nil {
				return err
			}
		} else {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		}

		if err := seed.EnsureBaseData(conn, node); err != nil {
			return err
		}
		if cfg.SeedDemoData {
			if err := seed.EnsureDemoData(conn, node); err != nil {
				return err
			}
			log.Info("demo data seeded")
		}

		log.Info("migrations applied", zap.String("db_type", cfg.DBType))
		return nil
	}),
)
