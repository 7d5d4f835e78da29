package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/vivendahq/vivenda/pkg/db/pagination"
	"gorm.io/gorm"
)

// ListFilter narrows the catalog query. Zero values mean "not filtered".
type ListFilter struct {
	Query           string
	City            string
	CategoryID      snowflake.ID
	OwnerID         snowflake.ID
	TransactionType TransactionType
	ListingStatus   *ListingStatus
	Featured        *bool
	MinPrice        *int64
	MaxPrice        *int64

	// Radius filter: both coordinates plus RadiusKm must be set.
	Latitude  *float64
	Longitude *float64
	RadiusKm  float64
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, property *Property) error
	Update(ctx context.Context, db *gorm.DB, property *Property) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Property, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]*Property, int64, error)
	ListWithinBounds(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Property, error)
	Featured(ctx context.Context, db *gorm.DB, limit int) ([]*Property, error)
	Exists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
	SetListingStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status ListingStatus) error

	InsertImage(ctx context.Context, db *gorm.DB, image *PropertyImage) error
	ListImages(ctx context.Context, db *gorm.DB, propertyID snowflake.ID) ([]PropertyImage, error)
	DeleteImage(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	DeleteImagesForProperty(ctx context.Context, db *gorm.DB, propertyID snowflake.ID) error
	FindImageByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PropertyImage, error)
}
