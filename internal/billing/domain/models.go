// Package domain holds the billing ledger model: bills, payments and the
// status derivation shared by every write path.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// BillStatus is the cached settlement state of a bill. The payment sum is
// authoritative; the column exists so list queries stay cheap.
type BillStatus string

const (
	BillPending BillStatus = "pending"
	BillPaid    BillStatus = "paid"
)

func ParseBillStatus(value string) (BillStatus, bool) {
	switch BillStatus(value) {
	case BillPending, BillPaid:
		return BillStatus(value), true
	default:
		return "", false
	}
}

// Bill is a single monetary obligation with a due date, charged against a
// contract or a sale.
type Bill struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	BillableType BillableType `gorm:"type:text;not null;index:idx_bills_billable" json:"billable_type"`
	BillableID   snowflake.ID `gorm:"not null;index:idx_bills_billable" json:"billable_id"`
	DueDate      time.Time    `gorm:"not null" json:"due_date"`
	Amount       int64        `gorm:"not null" json:"amount"`
	Status       BillStatus   `gorm:"type:text;not null;default:'pending'" json:"status"`
	Description  string       `gorm:"type:text" json:"description,omitempty"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Payments []Payment `gorm:"foreignKey:BillID" json:"payments,omitempty"`
	// Billable is the resolved contract or sale, filled by the repository.
	Billable any `gorm:"-" json:"billable,omitempty"`
}

func (Bill) TableName() string { return "bills" }

func (b Bill) Ref() BillableRef {
	return BillableRef{Type: b.BillableType, ID: b.BillableID}
}

// Payment applies money against exactly one bill. Rows are immutable after
// insert; corrections are new payments, not edits.
type Payment struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	BillID        snowflake.ID `gorm:"not null;index" json:"bill_id"`
	PaymentDate   time.Time    `gorm:"not null" json:"payment_date"`
	Amount        int64        `gorm:"not null" json:"amount"`
	PaymentMethod string       `json:"payment_method,omitempty"`
	Notes         string       `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	Bill *Bill `gorm:"foreignKey:BillID" json:"bill,omitempty"`
}

func (Payment) TableName() string { return "payments" }

// TotalPaid sums payment amounts.
func TotalPaid(payments []Payment) int64 {
	var total int64
	for _, p := range payments {
		total += p.Amount
	}
	return total
}

// IsPaid is the single source of truth for settlement: a bill is paid when
// its cached status says so or its payments cover the amount. Write paths
// recompute this inside their transaction; readers may use it to verify the
// cache.
func IsPaid(bill Bill, payments []Payment) bool {
	return bill.Status == BillPaid || TotalPaid(payments) >= bill.Amount
}
