package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/vivendahq/vivenda/pkg/db/pagination"
)

type CreateBillRequest struct {
	Billable    BillableRef
	DueDate     time.Time
	Amount      int64
	Description string
}

type RecordPaymentRequest struct {
	BillID        snowflake.ID
	PaymentDate   time.Time
	Amount        int64
	PaymentMethod string
	Notes         string
}

type ListBillsRequest struct {
	Filter ListBillsFilter
	Page   pagination.Pagination
}

type BillPage struct {
	Bills    []Bill              `json:"bills"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

type Service interface {
	CreateBill(ctx context.Context, req CreateBillRequest) (Bill, error)
	GetBill(ctx context.Context, id snowflake.ID) (Bill, error)
	ListBills(ctx context.Context, req ListBillsRequest) (BillPage, error)
	ListBillsForBillable(ctx context.Context, ref BillableRef) ([]Bill, error)

	// GenerateInstallments writes one bill per installment inside the
	// caller's transaction, due on consecutive months after baseDate.
	GenerateInstallments(ctx context.Context, tx *gorm.DB, ref BillableRef, baseDate time.Time, count int, amount int64) ([]Bill, error)
	// DeleteForBillable removes every bill (and payments) for a contract or
	// sale inside the caller's transaction.
	DeleteForBillable(ctx context.Context, tx *gorm.DB, ref BillableRef) error

	// RecordPayment returns the inserted payment with its bill reloaded,
	// payments and billable included.
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (Payment, error)
	ListPayments(ctx context.Context) ([]Payment, error)
}

var (
	ErrBillNotFound       = errors.New("bill_not_found")
	ErrInvalidBillID      = errors.New("invalid_bill_id")
	ErrInvalidBillable    = errors.New("invalid_billable")
	ErrBillableNotFound   = errors.New("billable_not_found")
	ErrInvalidDueDate     = errors.New("invalid_due_date")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrInvalidPayment     = errors.New("invalid_payment")
	ErrInvalidPaymentDate = errors.New("invalid_payment_date")
	ErrBillAlreadyPaid    = errors.New("bill_already_paid")
)
