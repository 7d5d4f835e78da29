package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, sale *Sale) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Sale, error)
	List(ctx context.Context, db *gorm.DB) ([]*Sale, error)
	Exists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
}
