package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vivendahq/vivenda/internal/billing/domain"
	"github.com/vivendahq/vivenda/internal/billing/repository"
	categorydomain "github.com/vivendahq/vivenda/internal/category/domain"
	contractdomain "github.com/vivendahq/vivenda/internal/contract/domain"
	propertydomain "github.com/vivendahq/vivenda/internal/property/domain"
	saledomain "github.com/vivendahq/vivenda/internal/sale/domain"
	userdomain "github.com/vivendahq/vivenda/internal/user/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	// SQLite support hack: remove FOR UPDATE clauses
	stripLock := func(d *gorm.DB) {
		sql := d.Statement.SQL.String()
		if strings.Contains(sql, "FOR UPDATE") {
			newSQL := strings.ReplaceAll(sql, "FOR UPDATE", "")
			d.Statement.SQL.Reset()
			d.Statement.SQL.WriteString(newSQL)
		}
	}
	db.Callback().Query().Before("gorm:query").Register("sqlite_skip_locked", stripLock)
	db.Callback().Row().Before("gorm:row").Register("sqlite_skip_locked_row", stripLock)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&userdomain.User{},
		&categorydomain.Category{},
		&propertydomain.Property{},
		&propertydomain.PropertyImage{},
		&contractdomain.Contract{},
		&saledomain.Sale{},
		&domain.Bill{},
		&domain.Payment{},
	))
	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB, *snowflake.Node) {
	t.Helper()
	db := newTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	svc := &Service{
		db:    db,
		log:   zap.NewNop(),
		repo:  repository.Provide(),
		genID: node,
	}
	return svc, db, node
}

type fixtures struct {
	owner    userdomain.User
	tenant   userdomain.User
	property propertydomain.Property
	contract contractdomain.Contract
	sale     saledomain.Sale
}

func seedFixtures(t *testing.T, db *gorm.DB, node *snowflake.Node) fixtures {
	t.Helper()
	f := fixtures{
		owner: userdomain.User{
			ID: node.Generate(), Name: "Marta Ruiz", Email: "marta@example.com",
			PasswordHash: "x", Role: userdomain.RoleOwner,
		},
		tenant: userdomain.User{
			ID: node.Generate(), Name: "Diego Castro", Email: "diego@example.com",
			PasswordHash: "x", Role: userdomain.RoleTenant,
		},
	}
	require.NoError(t, db.Create(&f.owner).Error)
	require.NoError(t, db.Create(&f.tenant).Error)

	category := categorydomain.Category{ID: node.Generate(), Name: "Apartamento"}
	require.NoError(t, db.Create(&category).Error)

	f.property = propertydomain.Property{
		ID: node.Generate(), OwnerID: f.owner.ID, CategoryID: category.ID,
		Address: "Calle 10 #5-21", City: "Bogota", Price: 250_000_00,
	}
	require.NoError(t, db.Create(&f.property).Error)

	f.contract = contractdomain.Contract{
		ID: node.Generate(), PropertyID: f.property.ID, TenantID: f.tenant.ID,
		StartDate:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		MonthlyRent: 1_200_00, Status: contractdomain.ContractActive,
	}
	require.NoError(t, db.Create(&f.contract).Error)

	f.sale = saledomain.Sale{
		ID: node.Generate(), PropertyID: f.property.ID, BuyerID: f.tenant.ID,
		TotalAmount: 90_000_00, SaleType: saledomain.SaleInstallment,
		Installments: 3, InstallmentAmount: 30_000_00,
		SaleDate: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&f.sale).Error)
	return f
}

func TestCreateBill(t *testing.T) {
	svc, db, node := newTestService(t)
	f := seedFixtures(t, db, node)
	ctx := context.Background()

	bill, err := svc.CreateBill(ctx, domain.CreateBillRequest{
		Billable:    domain.BillableRef{Type: domain.BillableContract, ID: f.contract.ID},
		DueDate:     time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Amount:      1_200_00,
		Description: "February rent",
	})
	require.NoError(t, err)
	require.Equal(t, domain.BillPending, bill.Status)
	require.Equal(t, f.contract.ID, bill.BillableID)

	loaded, err := svc.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	require.Equal(t, bill.Amount, loaded.Amount)
	require.NotNil(t, loaded.Billable)
}

func TestCreateBillValidation(t *testing.T) {
	svc, db, node := newTestService(t)
	f := seedFixtures(t, db, node)
	ctx := context.Background()
	due := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.CreateBill(ctx, domain.CreateBillRequest{
		Billable: domain.BillableRef{Type: "invoice", ID: f.contract.ID},
		DueDate:  due, Amount: 100,
	})
	require.ErrorIs(t, err, domain.ErrInvalidBillable)

	_, err = svc.CreateBill(ctx, domain.CreateBillRequest{
		Billable: domain.BillableRef{Type: domain.BillableContract, ID: node.Generate()},
		DueDate:  due, Amount: 100,
	})
	require.ErrorIs(t, err, domain.ErrBillableNotFound)

	_, err = svc.CreateBill(ctx, domain.CreateBillRequest{
		Billable: domain.BillableRef{Type: domain.BillableContract, ID: f.contract.ID},
		DueDate:  due, Amount: -1,
	})
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	var count int64
	require.NoError(t, db.Model(&domain.Bill{}).Count(&count).Error)
	require.Zero(t, count, "rejected requests must persist nothing")
}

func TestGenerateInstallments(t *testing.T) {
	svc, db, node := newTestService(t)
	f := seedFixtures(t, db, node)
	ctx := context.Background()

	ref := domain.BillableRef{Type: domain.BillableSale, ID: f.sale.ID}
	bills, err := svc.GenerateInstallments(ctx, db, ref, f.sale.SaleDate, 3, 30_000_00)
	require.NoError(t, err)
	require.Len(t, bills, 3)

	wantDue := []time.Time{
		time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC),
	}
	for i, bill := range bills {
		require.True(t, wantDue[i].Equal(bill.DueDate), "installment %d due date", i+1)
		require.Equal(t, int64(30_000_00), bill.Amount)
		require.Equal(t, domain.BillPending, bill.Status)
	}

	stored, err := svc.ListBillsForBillable(ctx, ref)
	require.NoError(t, err)
	require.Len(t, stored, 3)
}

func TestRecordPaymentFlipsStatus(t *testing.T) {
	svc, db, node := newTestService(t)
	f := seedFixtures(t, db, node)
	ctx := context.Background()

	bill, err := svc.CreateBill(ctx, domain.CreateBillRequest{
		Billable: domain.BillableRef{Type: domain.BillableContract, ID: f.contract.ID},
		DueDate:  time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Amount:   100,
	})
	require.NoError(t, err)

	payDate := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	_, err = svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		BillID: bill.ID, PaymentDate: payDate, Amount: 50,
	})
	require.NoError(t, err)

	mid, err := svc.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	require.Equal(t, domain.BillPending, mid.Status)
	require.False(t, domain.IsPaid(mid, mid.Payments))

	_, err = svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		BillID: bill.ID, PaymentDate: payDate, Amount: 50,
	})
	require.NoError(t, err)

	done, err := svc.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	require.Equal(t, domain.BillPaid, done.Status)
	require.True(t, domain.IsPaid(done, done.Payments))
	require.Len(t, done.Payments, 2)
}

func TestRecordPaymentValidation(t *testing.T) {
	svc, db, node := newTestService(t)
	f := seedFixtures(t, db, node)
	ctx := context.Background()

	bill, err := svc.CreateBill(ctx, domain.CreateBillRequest{
		Billable: domain.BillableRef{Type: domain.BillableContract, ID: f.contract.ID},
		DueDate:  time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Amount:   100,
	})
	require.NoError(t, err)

	_, err = svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		BillID: bill.ID, PaymentDate: time.Now(), Amount: -1,
	})
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		BillID: bill.ID, Amount: 10,
	})
	require.ErrorIs(t, err, domain.ErrInvalidPaymentDate)

	_, err = svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		BillID: node.Generate(), PaymentDate: time.Now(), Amount: 10,
	})
	require.ErrorIs(t, err, domain.ErrBillNotFound)

	var count int64
	require.NoError(t, db.Model(&domain.Payment{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestRecordPaymentZeroAmount(t *testing.T) {
	svc, db, node := newTestService(t)
	f := seedFixtures(t, db, node)
	ctx := context.Background()

	bill, err := svc.CreateBill(ctx, domain.CreateBillRequest{
		Billable: domain.BillableRef{Type: domain.BillableContract, ID: f.contract.ID},
		DueDate:  time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Amount:   100,
	})
	require.NoError(t, err)

	// Zero-amount payments are accepted; only negative amounts are invalid.
	payment, err := svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		BillID: bill.ID, PaymentDate: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC), Amount: 0,
	})
	require.NoError(t, err)
	require.Zero(t, payment.Amount)

	loaded, err := svc.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	require.Equal(t, domain.BillPending, loaded.Status)
	require.Len(t, loaded.Payments, 1)
}

func TestConcurrentHalfPayments(t *testing.T) {
	svc, db, node := newTestService(t)
	f := seedFixtures(t, db, node)
	ctx := context.Background()

	bill, err := svc.CreateBill(ctx, domain.CreateBillRequest{
		Billable: domain.BillableRef{Type: domain.BillableContract, ID: f.contract.ID},
		DueDate:  time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Amount:   100,
	})
	require.NoError(t, err)

	payDate := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.RecordPayment(ctx, domain.RecordPaymentRequest{
				BillID: bill.ID, PaymentDate: payDate, Amount: 50,
			})
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	done, err := svc.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	require.Equal(t, domain.BillPaid, done.Status)
	require.Len(t, done.Payments, 2)

	var total int64
	require.NoError(t, db.Model(&domain.Payment{}).
		Where("bill_id = ?", bill.ID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error)
	require.Equal(t, int64(100), total)
}

func TestPaidStatusNeverReverts(t *testing.T) {
	svc, db, node := newTestService(t)
	f := seedFixtures(t, db, node)
	ctx := context.Background()

	bill, err := svc.CreateBill(ctx, domain.CreateBillRequest{
		Billable: domain.BillableRef{Type: domain.BillableContract, ID: f.contract.ID},
		DueDate:  time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Amount:   100,
	})
	require.NoError(t, err)

	payDate := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	_, err = svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		BillID: bill.ID, PaymentDate: payDate, Amount: 150,
	})
	require.NoError(t, err)

	paid, err := svc.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	require.Equal(t, domain.BillPaid, paid.Status)

	// A later small payment must not flip the bill back to pending.
	_, err = svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		BillID: bill.ID, PaymentDate: payDate, Amount: 1,
	})
	require.NoError(t, err)

	still, err := svc.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	require.Equal(t, domain.BillPaid, still.Status)
}

func TestListBillsDerivedStatusFilter(t *testing.T) {
	svc, db, node := newTestService(t)
	f := seedFixtures(t, db, node)
	ctx := context.Background()

	covered, err := svc.CreateBill(ctx, domain.CreateBillRequest{
		Billable: domain.BillableRef{Type: domain.BillableContract, ID: f.contract.ID},
		DueDate:  time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Amount:   100,
	})
	require.NoError(t, err)
	open, err := svc.CreateBill(ctx, domain.CreateBillRequest{
		Billable: domain.BillableRef{Type: domain.BillableContract, ID: f.contract.ID},
		DueDate:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:   100,
	})
	require.NoError(t, err)

	// Insert a covering payment directly, leaving the cached status stale.
	require.NoError(t, db.Create(&domain.Payment{
		ID: node.Generate(), BillID: covered.ID,
		PaymentDate: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC), Amount: 100,
	}).Error)

	paid := domain.BillPaid
	page, err := svc.ListBills(ctx, domain.ListBillsRequest{
		Filter: domain.ListBillsFilter{Status: &paid},
	})
	require.NoError(t, err)
	require.Len(t, page.Bills, 1)
	require.Equal(t, covered.ID, page.Bills[0].ID)

	pending := domain.BillPending
	page, err = svc.ListBills(ctx, domain.ListBillsRequest{
		Filter: domain.ListBillsFilter{Status: &pending},
	})
	require.NoError(t, err)
	require.Len(t, page.Bills, 1)
	require.Equal(t, open.ID, page.Bills[0].ID)
}

func TestListBillsDueMonthAndSearch(t *testing.T) {
	svc, db, node := newTestService(t)
	f := seedFixtures(t, db, node)
	ctx := context.Background()

	feb, err := svc.CreateBill(ctx, domain.CreateBillRequest{
		Billable:    domain.BillableRef{Type: domain.BillableContract, ID: f.contract.ID},
		DueDate:     time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
		Amount:      100,
		Description: "February rent",
	})
	require.NoError(t, err)
	_, err = svc.CreateBill(ctx, domain.CreateBillRequest{
		Billable:    domain.BillableRef{Type: domain.BillableContract, ID: f.contract.ID},
		DueDate:     time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Amount:      100,
		Description: "March rent",
	})
	require.NoError(t, err)

	month := time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC)
	page, err := svc.ListBills(ctx, domain.ListBillsRequest{
		Filter: domain.ListBillsFilter{DueMonth: &month},
	})
	require.NoError(t, err)
	require.Len(t, page.Bills, 1)
	require.Equal(t, feb.ID, page.Bills[0].ID)

	// Search matches the billed party's name through the contract.
	page, err = svc.ListBills(ctx, domain.ListBillsRequest{
		Filter: domain.ListBillsFilter{Query: "Diego"},
	})
	require.NoError(t, err)
	require.Len(t, page.Bills, 2)
	require.Equal(t, int64(2), page.PageInfo.TotalItems)

	// And the property address behind the billable.
	page, err = svc.ListBills(ctx, domain.ListBillsRequest{
		Filter: domain.ListBillsFilter{Query: "Calle 10"},
	})
	require.NoError(t, err)
	require.Len(t, page.Bills, 2)

	page, err = svc.ListBills(ctx, domain.ListBillsRequest{
		Filter: domain.ListBillsFilter{Query: "Medellin"},
	})
	require.NoError(t, err)
	require.Empty(t, page.Bills)
}

func TestDeleteForBillable(t *testing.T) {
	svc, db, node := newTestService(t)
	f := seedFixtures(t, db, node)
	ctx := context.Background()

	ref := domain.BillableRef{Type: domain.BillableSale, ID: f.sale.ID}
	bills, err := svc.GenerateInstallments(ctx, db, ref, f.sale.SaleDate, 3, 30_000_00)
	require.NoError(t, err)
	_, err = svc.RecordPayment(ctx, domain.RecordPaymentRequest{
		BillID: bills[0].ID, PaymentDate: time.Now(), Amount: 30_000_00,
	})
	require.NoError(t, err)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return svc.DeleteForBillable(ctx, tx, ref)
	}))

	var billCount, paymentCount int64
	require.NoError(t, db.Model(&domain.Bill{}).Count(&billCount).Error)
	require.NoError(t, db.Model(&domain.Payment{}).Count(&paymentCount).Error)
	require.Zero(t, billCount)
	require.Zero(t, paymentCount)
}

func TestIsPaid(t *testing.T) {
	bill := domain.Bill{Amount: 100, Status: domain.BillPending}
	require.False(t, domain.IsPaid(bill, nil))
	require.False(t, domain.IsPaid(bill, []domain.Payment{{Amount: 99}}))
	require.True(t, domain.IsPaid(bill, []domain.Payment{{Amount: 60}, {Amount: 40}}))
	require.True(t, domain.IsPaid(domain.Bill{Amount: 100, Status: domain.BillPaid}, nil))
}
