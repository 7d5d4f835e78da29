package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, contract *Contract) error
	Update(ctx context.Context, db *gorm.DB, contract *Contract) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Contract, error)
	List(ctx context.Context, db *gorm.DB) ([]*Contract, error)
	ListByProperty(ctx context.Context, db *gorm.DB, propertyID snowflake.ID) ([]*Contract, error)
	Exists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
}
