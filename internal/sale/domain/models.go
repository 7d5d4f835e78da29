package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/vivendahq/vivenda/internal/billing/domain"
	propertydomain "github.com/vivendahq/vivenda/internal/property/domain"
	userdomain "github.com/vivendahq/vivenda/internal/user/domain"
)

// SaleType distinguishes lump-sum purchases from installment plans.
type SaleType string

const (
	SaleNormal      SaleType = "normal"
	SaleInstallment SaleType = "installment"
)

func ParseSaleType(value string) (SaleType, bool) {
	switch SaleType(value) {
	case SaleNormal, SaleInstallment:
		return SaleType(value), true
	default:
		return "", false
	}
}

// Sale is a property purchase. Installment sales carry a bill per scheduled
// installment.
type Sale struct {
	ID                snowflake.ID `gorm:"primaryKey" json:"id"`
	PropertyID        snowflake.ID `gorm:"not null;index" json:"property_id"`
	BuyerID           snowflake.ID `gorm:"not null;index" json:"buyer_id"`
	TotalAmount       int64        `gorm:"not null" json:"total_amount"`
	SaleType          SaleType     `gorm:"type:text;not null;default:'normal'" json:"sale_type"`
	Installments      int          `json:"installments,omitempty"`
	InstallmentAmount int64        `json:"installment_amount,omitempty"`
	SaleDate          time.Time    `gorm:"not null" json:"sale_date"`
	CreatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Property *propertydomain.Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	Buyer    *userdomain.User         `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	Bills    []billingdomain.Bill     `gorm:"-" json:"bills,omitempty"`
}

func (Sale) TableName() string { return "sales" }
