package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Category struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"not null;uniqueIndex" json:"name"`
	Description string       `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Category) TableName() string { return "categories" }

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, category *Category) error
	List(ctx context.Context, db *gorm.DB) ([]*Category, error)
	Exists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
}

type CreateCategoryRequest struct {
	Name        string
	Description string
}

type Service interface {
	Create(ctx context.Context, req CreateCategoryRequest) (Category, error)
	List(ctx context.Context) ([]Category, error)
}

var (
	ErrInvalidName = errors.New("invalid_category_name")
	ErrNameTaken   = errors.New("category_name_taken")
)
