package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type CreateContractRequest struct {
	PropertyID      snowflake.ID
	TenantID        snowflake.ID
	StartDate       time.Time
	EndDate         time.Time
	MonthlyRent     int64
	SecurityDeposit int64
	Terms           string
	FilePath        string
}

// UpdateContractRequest applies partial updates; nil fields are untouched.
type UpdateContractRequest struct {
	StartDate   *time.Time
	EndDate     *time.Time
	MonthlyRent *int64
	Status      *string
}

type Service interface {
	List(ctx context.Context) ([]Contract, error)
	ListByProperty(ctx context.Context, propertyID snowflake.ID) ([]Contract, error)
	GetByID(ctx context.Context, id snowflake.ID) (Contract, error)
	Create(ctx context.Context, req CreateContractRequest) (Contract, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateContractRequest) (Contract, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

var (
	ErrNotFound        = errors.New("contract_not_found")
	ErrInvalidID       = errors.New("invalid_contract_id")
	ErrInvalidProperty = errors.New("invalid_property")
	ErrInvalidTenant   = errors.New("invalid_tenant")
	ErrInvalidDates    = errors.New("invalid_contract_dates")
	ErrInvalidRent     = errors.New("invalid_monthly_rent")
	ErrInvalidStatus   = errors.New("invalid_contract_status")
)
