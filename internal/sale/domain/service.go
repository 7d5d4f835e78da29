package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type CreateSaleRequest struct {
	PropertyID        snowflake.ID
	BuyerID           snowflake.ID
	TotalAmount       int64
	SaleType          string
	Installments      int
	InstallmentAmount int64
	SaleDate          time.Time
}

type Service interface {
	List(ctx context.Context) ([]Sale, error)
	GetByID(ctx context.Context, id snowflake.ID) (Sale, error)
	Create(ctx context.Context, req CreateSaleRequest) (Sale, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

var (
	ErrNotFound                 = errors.New("sale_not_found")
	ErrInvalidID                = errors.New("invalid_sale_id")
	ErrInvalidProperty          = errors.New("invalid_property")
	ErrInvalidBuyer             = errors.New("invalid_buyer")
	ErrInvalidAmount            = errors.New("invalid_total_amount")
	ErrInvalidSaleType          = errors.New("invalid_sale_type")
	ErrInvalidInstallments      = errors.New("invalid_installments")
	ErrInvalidInstallmentAmount = errors.New("invalid_installment_amount")
	ErrInvalidSaleDate          = errors.New("invalid_sale_date")
)
