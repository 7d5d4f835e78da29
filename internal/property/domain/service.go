package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/vivendahq/vivenda/internal/auth/domain"
	"github.com/vivendahq/vivenda/pkg/db/pagination"
)

type ListPropertiesRequest struct {
	Filter ListFilter
	Page   pagination.Pagination
}

type ListPropertiesResponse struct {
	pagination.PageInfo
	Properties []Property `json:"properties"`
}

type CreatePropertyRequest struct {
	CategoryID      snowflake.ID
	Address         string
	City            string
	Area            int64
	Price           int64
	Description     string
	Bedrooms        int
	Bathrooms       int
	IsFeatured      bool
	TransactionType string
	Latitude        *float64
	Longitude       *float64
	ImageURLs       []string
}

// UpdatePropertyRequest applies partial updates; nil fields are untouched.
type UpdatePropertyRequest struct {
	CategoryID    *snowflake.ID
	Address       *string
	City          *string
	Area          *int64
	Price         *int64
	Description   *string
	Bedrooms      *int
	Bathrooms     *int
	IsFeatured    *bool
	ListingStatus *string
	Latitude      *float64
	Longitude     *float64
}

type AddImageRequest struct {
	PropertyID snowflake.ID
	ImageURL   string
}

type Service interface {
	List(ctx context.Context, req ListPropertiesRequest) (ListPropertiesResponse, error)
	Featured(ctx context.Context) ([]Property, error)
	ByOwner(ctx context.Context, ownerID snowflake.ID, req ListPropertiesRequest) (ListPropertiesResponse, error)
	GetByID(ctx context.Context, id snowflake.ID) (Property, error)
	Create(ctx context.Context, actor authdomain.Principal, req CreatePropertyRequest) (Property, error)
	Update(ctx context.Context, actor authdomain.Principal, id snowflake.ID, req UpdatePropertyRequest) (Property, error)
	Delete(ctx context.Context, actor authdomain.Principal, id snowflake.ID) error

	AddImage(ctx context.Context, actor authdomain.Principal, req AddImageRequest) (PropertyImage, error)
	ListImages(ctx context.Context, propertyID snowflake.ID) ([]PropertyImage, error)
	DeleteImage(ctx context.Context, actor authdomain.Principal, id snowflake.ID) error
}

var (
	ErrNotFound               = errors.New("property_not_found")
	ErrImageNotFound          = errors.New("property_image_not_found")
	ErrInvalidID              = errors.New("invalid_property_id")
	ErrInvalidAddress         = errors.New("invalid_address")
	ErrInvalidCity            = errors.New("invalid_city")
	ErrInvalidCategory        = errors.New("invalid_category")
	ErrInvalidPrice           = errors.New("invalid_price")
	ErrInvalidTransactionType = errors.New("invalid_transaction_type")
	ErrInvalidListingStatus   = errors.New("invalid_listing_status")
	ErrInvalidImageURL        = errors.New("invalid_image_url")
	ErrNotOwner               = errors.New("not_property_owner")
)
