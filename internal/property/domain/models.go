package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	categorydomain "github.com/vivendahq/vivenda/internal/category/domain"
	userdomain "github.com/vivendahq/vivenda/internal/user/domain"
	"gorm.io/datatypes"
)

// TransactionType says whether a property is offered for rent or for sale.
type TransactionType string

const (
	TransactionRent TransactionType = "rent"
	TransactionSale TransactionType = "sale"
)

func ParseTransactionType(value string) (TransactionType, bool) {
	switch TransactionType(value) {
	case TransactionRent, TransactionSale:
		return TransactionType(value), true
	default:
		return "", false
	}
}

// ListingStatus tracks where a property sits in the marketplace funnel.
type ListingStatus string

const (
	ListingAvailable ListingStatus = "available"
	ListingReserved  ListingStatus = "reserved"
	ListingRented    ListingStatus = "rented"
	ListingSold      ListingStatus = "sold"
	ListingInactive  ListingStatus = "inactive"
)

func ParseListingStatus(value string) (ListingStatus, bool) {
	switch ListingStatus(value) {
	case ListingAvailable, ListingReserved, ListingRented, ListingSold, ListingInactive:
		return ListingStatus(value), true
	default:
		return "", false
	}
}

type Property struct {
	ID              snowflake.ID      `gorm:"primaryKey" json:"id"`
	OwnerID         snowflake.ID      `gorm:"not null;index" json:"owner_id"`
	CategoryID      snowflake.ID      `gorm:"not null;index" json:"category_id"`
	Address         string            `gorm:"not null" json:"address"`
	City            string            `gorm:"not null;index" json:"city"`
	Area            int64             `json:"area,omitempty"`
	Price           int64             `json:"price,omitempty"`
	Description     string            `gorm:"type:text" json:"description,omitempty"`
	Bedrooms        int               `json:"bedrooms,omitempty"`
	Bathrooms       int               `json:"bathrooms,omitempty"`
	IsFeatured      bool              `gorm:"not null;default:false" json:"is_featured"`
	TransactionType TransactionType   `gorm:"type:text;not null;default:'rent'" json:"transaction_type"`
	ListingStatus   ListingStatus     `gorm:"type:text;not null;default:'available'" json:"listing_status"`
	Latitude        *float64          `json:"latitude,omitempty"`
	Longitude       *float64          `json:"longitude,omitempty"`
	Metadata        datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Images   []PropertyImage          `gorm:"foreignKey:PropertyID" json:"images,omitempty"`
	Category *categorydomain.Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Owner    *userdomain.User         `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

func (Property) TableName() string { return "properties" }

type PropertyImage struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	PropertyID snowflake.ID `gorm:"not null;index" json:"property_id"`
	ImageURL   string       `gorm:"not null" json:"image_url"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (PropertyImage) TableName() string { return "property_images" }
