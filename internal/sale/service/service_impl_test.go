package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	billingdomain "github.com/vivendahq/vivenda/internal/billing/domain"
	billingrepo "github.com/vivendahq/vivenda/internal/billing/repository"
	billingservice "github.com/vivendahq/vivenda/internal/billing/service"
	categorydomain "github.com/vivendahq/vivenda/internal/category/domain"
	contractdomain "github.com/vivendahq/vivenda/internal/contract/domain"
	propertydomain "github.com/vivendahq/vivenda/internal/property/domain"
	propertyrepo "github.com/vivendahq/vivenda/internal/property/repository"
	"github.com/vivendahq/vivenda/internal/sale/domain"
	salerepo "github.com/vivendahq/vivenda/internal/sale/repository"
	userdomain "github.com/vivendahq/vivenda/internal/user/domain"
	userrepo "github.com/vivendahq/vivenda/internal/user/repository"
)

type testEnv struct {
	svc      domain.Service
	db       *gorm.DB
	node     *snowflake.Node
	buyer    userdomain.User
	property propertydomain.Property
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&userdomain.User{},
		&categorydomain.Category{},
		&propertydomain.Property{},
		&propertydomain.PropertyImage{},
		&contractdomain.Contract{},
		&domain.Sale{},
		&billingdomain.Bill{},
		&billingdomain.Payment{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	billing := billingservice.New(billingservice.Params{
		DB: db, Log: zap.NewNop(), Repo: billingrepo.Provide(), GenID: node,
	})
	svc := New(Params{
		DB:           db,
		Log:          zap.NewNop(),
		Repo:         salerepo.Provide(),
		PropertyRepo: propertyrepo.Provide(),
		UserRepo:     userrepo.Provide(),
		Billing:      billing,
		GenID:        node,
	})

	env := &testEnv{svc: svc, db: db, node: node}
	owner := userdomain.User{
		ID: node.Generate(), Name: "Marta Ruiz", Email: "marta@example.com",
		PasswordHash: "x", Role: userdomain.RoleOwner,
	}
	env.buyer = userdomain.User{
		ID: node.Generate(), Name: "Diego Castro", Email: "diego@example.com",
		PasswordHash: "x", Role: userdomain.RoleTenant,
	}
	require.NoError(t, db.Create(&owner).Error)
	require.NoError(t, db.Create(&env.buyer).Error)

	category := categorydomain.Category{ID: node.Generate(), Name: "Casa"}
	require.NoError(t, db.Create(&category).Error)

	env.property = propertydomain.Property{
		ID: node.Generate(), OwnerID: owner.ID, CategoryID: category.ID,
		Address: "Calle 80 #12-34", City: "Medellin",
		ListingStatus: propertydomain.ListingAvailable,
	}
	require.NoError(t, db.Create(&env.property).Error)
	return env
}

func TestCreateNormalSale(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sale, err := env.svc.Create(ctx, domain.CreateSaleRequest{
		PropertyID:  env.property.ID,
		BuyerID:     env.buyer.ID,
		TotalAmount: 90_000_00,
		SaleType:    "normal",
		SaleDate:    time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Equal(t, domain.SaleNormal, sale.SaleType)
	require.Empty(t, sale.Bills)

	var property propertydomain.Property
	require.NoError(t, env.db.First(&property, "id = ?", env.property.ID).Error)
	require.Equal(t, propertydomain.ListingSold, property.ListingStatus)
}

func TestCreateInstallmentSaleGeneratesSchedule(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sale, err := env.svc.Create(ctx, domain.CreateSaleRequest{
		PropertyID:        env.property.ID,
		BuyerID:           env.buyer.ID,
		TotalAmount:       300,
		SaleType:          "installment",
		Installments:      3,
		InstallmentAmount: 100,
		SaleDate:          time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, sale.Bills, 3)

	wantDue := []time.Time{
		time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC),
	}
	for i, bill := range sale.Bills {
		require.True(t, wantDue[i].Equal(bill.DueDate), "installment %d due date", i+1)
		require.Equal(t, int64(100), bill.Amount)
		require.Equal(t, billingdomain.BillPending, bill.Status)
	}

	loaded, err := env.svc.GetByID(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Bills, 3)
	require.NotNil(t, loaded.Property)
	require.NotNil(t, loaded.Buyer)
}

func TestCreateSaleValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	saleDate := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	_, err := env.svc.Create(ctx, domain.CreateSaleRequest{
		PropertyID: env.property.ID, BuyerID: env.buyer.ID,
		TotalAmount: 100, SaleType: "auction", SaleDate: saleDate,
	})
	require.ErrorIs(t, err, domain.ErrInvalidSaleType)

	_, err = env.svc.Create(ctx, domain.CreateSaleRequest{
		PropertyID: env.property.ID, BuyerID: env.buyer.ID,
		TotalAmount: 100, SaleType: "installment",
		Installments: 0, InstallmentAmount: 100, SaleDate: saleDate,
	})
	require.ErrorIs(t, err, domain.ErrInvalidInstallments)

	_, err = env.svc.Create(ctx, domain.CreateSaleRequest{
		PropertyID: env.property.ID, BuyerID: env.buyer.ID,
		TotalAmount: 100, SaleType: "installment",
		Installments: 3, InstallmentAmount: 0, SaleDate: saleDate,
	})
	require.ErrorIs(t, err, domain.ErrInvalidInstallmentAmount)

	_, err = env.svc.Create(ctx, domain.CreateSaleRequest{
		PropertyID: env.node.Generate(), BuyerID: env.buyer.ID,
		TotalAmount: 100, SaleType: "normal", SaleDate: saleDate,
	})
	require.ErrorIs(t, err, domain.ErrInvalidProperty)

	_, err = env.svc.Create(ctx, domain.CreateSaleRequest{
		PropertyID: env.property.ID, BuyerID: env.node.Generate(),
		TotalAmount: 100, SaleType: "normal", SaleDate: saleDate,
	})
	require.ErrorIs(t, err, domain.ErrInvalidBuyer)

	var sales, bills int64
	require.NoError(t, env.db.Model(&domain.Sale{}).Count(&sales).Error)
	require.NoError(t, env.db.Model(&billingdomain.Bill{}).Count(&bills).Error)
	require.Zero(t, sales)
	require.Zero(t, bills)
}

func TestDeleteSaleCascadesBills(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sale, err := env.svc.Create(ctx, domain.CreateSaleRequest{
		PropertyID:        env.property.ID,
		BuyerID:           env.buyer.ID,
		TotalAmount:       300,
		SaleType:          "installment",
		Installments:      3,
		InstallmentAmount: 100,
		SaleDate:          time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.Delete(ctx, sale.ID))

	var sales, bills int64
	require.NoError(t, env.db.Model(&domain.Sale{}).Count(&sales).Error)
	require.NoError(t, env.db.Model(&billingdomain.Bill{}).Count(&bills).Error)
	require.Zero(t, sales)
	require.Zero(t, bills)

	require.ErrorIs(t, env.svc.Delete(ctx, sale.ID), domain.ErrNotFound)
}
