package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/vivendahq/vivenda/internal/billing/domain"
	contractdomain "github.com/vivendahq/vivenda/internal/contract/domain"
	saledomain "github.com/vivendahq/vivenda/internal/sale/domain"
	"github.com/vivendahq/vivenda/pkg/db/pagination"
)

// paidCondition compares the bill amount against its payment sum so status
// filters match the derived settlement state even when the cached column is
// stale.
const paidCondition = `(bills.status = 'paid' OR bills.amount <= (
	SELECT COALESCE(SUM(payments.amount), 0) FROM payments WHERE payments.bill_id = bills.id
))`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertBill(ctx context.Context, db *gorm.DB, bill *domain.Bill) error {
	return db.WithContext(ctx).Create(bill).Error
}

func (r *repo) InsertBills(ctx context.Context, db *gorm.DB, bills []*domain.Bill) error {
	if len(bills) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(bills).Error
}

func (r *repo) FindBillForUpdate(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*domain.Bill, error) {
	var bill domain.Bill
	err := tx.WithContext(ctx).Raw(
		`SELECT id, billable_type, billable_id, due_date, amount, status, description, created_at, updated_at
		 FROM bills
		 WHERE id = ?
		 FOR UPDATE`,
		id,
	).Scan(&bill).Error
	if err != nil {
		return nil, err
	}
	if bill.ID == 0 {
		return nil, nil
	}
	return &bill, nil
}

func (r *repo) FindBillByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Bill, error) {
	var bill domain.Bill
	err := db.WithContext(ctx).
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("payment_date asc, id asc")
		}).
		First(&bill, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &bill, nil
}

func (r *repo) ListBills(ctx context.Context, db *gorm.DB, filter domain.ListBillsFilter, page pagination.Pagination) ([]*domain.Bill, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Bill{})
	stmt = applyFilter(stmt, filter)

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bills []*domain.Bill
	err := page.Apply(stmt).
		Preload("Payments").
		Order("bills.created_at desc, bills.id desc").
		Find(&bills).Error
	if err != nil {
		return nil, 0, err
	}
	return bills, total, nil
}

func applyFilter(stmt *gorm.DB, filter domain.ListBillsFilter) *gorm.DB {
	if filter.BillableType != nil {
		stmt = stmt.Where("bills.billable_type = ?", *filter.BillableType)
	}
	if filter.BillableID != 0 {
		stmt = stmt.Where("bills.billable_id = ?", filter.BillableID)
	}
	if filter.Status != nil {
		switch *filter.Status {
		case domain.BillPaid:
			stmt = stmt.Where(paidCondition)
		case domain.BillPending:
			stmt = stmt.Where("NOT " + paidCondition)
		}
	}
	if filter.DueMonth != nil {
		start := time.Date(filter.DueMonth.Year(), filter.DueMonth.Month(), 1, 0, 0, 0, 0, time.UTC)
		stmt = stmt.Where("bills.due_date >= ? AND bills.due_date < ?", start, start.AddDate(0, 1, 0))
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		stmt = stmt.Where(
			`bills.description LIKE ?
			 OR (bills.billable_type = 'contract' AND bills.billable_id IN (
			   SELECT contracts.id FROM contracts
			   JOIN users ON users.id = contracts.tenant_id
			   JOIN properties ON properties.id = contracts.property_id
			   WHERE users.name LIKE ? OR properties.address LIKE ? OR properties.city LIKE ?))
			 OR (bills.billable_type = 'sale' AND bills.billable_id IN (
			   SELECT sales.id FROM sales
			   JOIN users ON users.id = sales.buyer_id
			   JOIN properties ON properties.id = sales.property_id
			   WHERE users.name LIKE ? OR properties.address LIKE ? OR properties.city LIKE ?))`,
			like, like, like, like, like, like, like,
		)
	}
	return stmt
}

func (r *repo) ListBillsForBillable(ctx context.Context, db *gorm.DB, ref domain.BillableRef) ([]*domain.Bill, error) {
	var bills []*domain.Bill
	err := db.WithContext(ctx).
		Preload("Payments").
		Where("billable_type = ? AND billable_id = ?", ref.Type, ref.ID).
		Order("due_date asc, id asc").
		Find(&bills).Error
	if err != nil {
		return nil, err
	}
	return bills, nil
}

func (r *repo) UpdateBillStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.BillStatus) error {
	return db.WithContext(ctx).
		Model(&domain.Bill{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *repo) DeleteBillsForBillable(ctx context.Context, db *gorm.DB, ref domain.BillableRef) error {
	err := db.WithContext(ctx).
		Where("bill_id IN (SELECT id FROM bills WHERE billable_type = ? AND billable_id = ?)", ref.Type, ref.ID).
		Delete(&domain.Payment{}).Error
	if err != nil {
		return err
	}
	return db.WithContext(ctx).
		Where("billable_type = ? AND billable_id = ?", ref.Type, ref.ID).
		Delete(&domain.Bill{}).Error
}

func (r *repo) InsertPayment(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Create(payment).Error
}

func (r *repo) SumPayments(ctx context.Context, db *gorm.DB, billID snowflake.ID) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Payment{}).
		Where("bill_id = ?", billID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repo) ListPayments(ctx context.Context, db *gorm.DB) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	err := db.WithContext(ctx).
		Preload("Bill").
		Order("payment_date desc, id desc").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repo) ResolveBillable(ctx context.Context, db *gorm.DB, ref domain.BillableRef) (any, error) {
	switch ref.Type {
	case domain.BillableContract:
		var contract contractdomain.Contract
		err := db.WithContext(ctx).
			Preload("Property").
			Preload("Tenant").
			First(&contract, "id = ?", ref.ID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return &contract, nil
	case domain.BillableSale:
		var sale saledomain.Sale
		err := db.WithContext(ctx).
			Preload("Property").
			Preload("Buyer").
			First(&sale, "id = ?", ref.ID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return &sale, nil
	default:
		return nil, nil
	}
}
