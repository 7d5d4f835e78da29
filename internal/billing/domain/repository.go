package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/vivendahq/vivenda/pkg/db/pagination"
)

// ListBillsFilter narrows bill listings. Status filters against the derived
// settlement state, not just the cached column.
type ListBillsFilter struct {
	BillableType *BillableType
	BillableID   snowflake.ID
	Status       *BillStatus
	// DueMonth restricts to bills due within the calendar month containing it.
	DueMonth *time.Time
	// Query matches against bill descriptions and the billed party's name.
	Query string
}

type Repository interface {
	InsertBill(ctx context.Context, db *gorm.DB, bill *Bill) error
	InsertBills(ctx context.Context, db *gorm.DB, bills []*Bill) error
	// FindBillForUpdate loads a bill under a row lock. Callers must hold an
	// open transaction.
	FindBillForUpdate(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*Bill, error)
	FindBillByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Bill, error)
	ListBills(ctx context.Context, db *gorm.DB, filter ListBillsFilter, page pagination.Pagination) ([]*Bill, int64, error)
	ListBillsForBillable(ctx context.Context, db *gorm.DB, ref BillableRef) ([]*Bill, error)
	UpdateBillStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status BillStatus) error
	DeleteBillsForBillable(ctx context.Context, db *gorm.DB, ref BillableRef) error

	InsertPayment(ctx context.Context, db *gorm.DB, payment *Payment) error
	SumPayments(ctx context.Context, db *gorm.DB, billID snowflake.ID) (int64, error)
	ListPayments(ctx context.Context, db *gorm.DB) ([]*Payment, error)

	// ResolveBillable loads the referenced contract or sale, or reports that
	// it does not exist.
	ResolveBillable(ctx context.Context, db *gorm.DB, ref BillableRef) (any, error)
}
