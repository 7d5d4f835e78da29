package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	propertydomain "github.com/vivendahq/vivenda/internal/property/domain"
	userdomain "github.com/vivendahq/vivenda/internal/user/domain"
)

// ContractStatus tracks the rental contract lifecycle.
type ContractStatus string

const (
	ContractActive    ContractStatus = "active"
	ContractExpired   ContractStatus = "expired"
	ContractFinalized ContractStatus = "finalized"
)

func ParseContractStatus(value string) (ContractStatus, bool) {
	switch ContractStatus(value) {
	case ContractActive, ContractExpired, ContractFinalized:
		return ContractStatus(value), true
	default:
		return "", false
	}
}

// Contract is a recurring rent obligation between a property owner and a
// tenant.
type Contract struct {
	ID              snowflake.ID   `gorm:"primaryKey" json:"id"`
	PropertyID      snowflake.ID   `gorm:"not null;index" json:"property_id"`
	TenantID        snowflake.ID   `gorm:"not null;index" json:"tenant_id"`
	StartDate       time.Time      `gorm:"not null" json:"start_date"`
	EndDate         time.Time      `gorm:"not null" json:"end_date"`
	MonthlyRent     int64          `gorm:"not null" json:"monthly_rent"`
	SecurityDeposit int64          `json:"security_deposit,omitempty"`
	Status          ContractStatus `gorm:"type:text;not null;default:'active'" json:"status"`
	Terms           string         `gorm:"type:text" json:"terms,omitempty"`
	FilePath        string         `json:"file_path,omitempty"`
	CreatedAt       time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Property *propertydomain.Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	Tenant   *userdomain.User         `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
}

func (Contract) TableName() string { return "contracts" }
