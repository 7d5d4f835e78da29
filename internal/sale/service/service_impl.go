package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	billingdomain "github.com/vivendahq/vivenda/internal/billing/domain"
	propertydomain "github.com/vivendahq/vivenda/internal/property/domain"
	"github.com/vivendahq/vivenda/internal/sale/domain"
	userdomain "github.com/vivendahq/vivenda/internal/user/domain"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Repo         domain.Repository
	PropertyRepo propertydomain.Repository
	UserRepo     userdomain.Repository
	Billing      billingdomain.Service
	GenID        *snowflake.Node
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	repo         domain.Repository
	propertyRepo propertydomain.Repository
	userRepo     userdomain.Repository
	billing      billingdomain.Service
	genID        *snowflake.Node
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("sale.service"),
		repo:         p.Repo,
		propertyRepo: p.PropertyRepo,
		userRepo:     p.UserRepo,
		billing:      p.Billing,
		genID:        p.GenID,
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Sale, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	sales := make([]domain.Sale, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if err := s.attachBills(ctx, item); err != nil {
			return nil, err
		}
		sales = append(sales, *item)
	}
	return sales, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Sale, error) {
	if id == 0 {
		return domain.Sale{}, domain.ErrInvalidID
	}
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Sale{}, err
	}
	if item == nil {
		return domain.Sale{}, domain.ErrNotFound
	}
	if err := s.attachBills(ctx, item); err != nil {
		return domain.Sale{}, err
	}
	return *item, nil
}

// Create records the sale, generates its installment schedule and marks the
// property sold, all in one transaction.
func (s *Service) Create(ctx context.Context, req domain.CreateSaleRequest) (domain.Sale, error) {
	saleType, ok := domain.ParseSaleType(req.SaleType)
	if !ok {
		return domain.Sale{}, domain.ErrInvalidSaleType
	}
	if req.TotalAmount < 0 {
		return domain.Sale{}, domain.ErrInvalidAmount
	}
	if req.SaleDate.IsZero() {
		return domain.Sale{}, domain.ErrInvalidSaleDate
	}
	if saleType == domain.SaleInstallment {
		if req.Installments < 1 {
			return domain.Sale{}, domain.ErrInvalidInstallments
		}
		if req.InstallmentAmount <= 0 {
			return domain.Sale{}, domain.ErrInvalidInstallmentAmount
		}
	}

	ok, err := s.propertyRepo.Exists(ctx, s.db, req.PropertyID)
	if err != nil {
		return domain.Sale{}, err
	}
	if !ok {
		return domain.Sale{}, domain.ErrInvalidProperty
	}
	buyer, err := s.userRepo.FindByID(ctx, s.db, req.BuyerID)
	if err != nil {
		return domain.Sale{}, err
	}
	if buyer == nil {
		return domain.Sale{}, domain.ErrInvalidBuyer
	}

	now := time.Now().UTC()
	sale := domain.Sale{
		ID:                s.genID.Generate(),
		PropertyID:        req.PropertyID,
		BuyerID:           req.BuyerID,
		TotalAmount:       req.TotalAmount,
		SaleType:          saleType,
		Installments:      req.Installments,
		InstallmentAmount: req.InstallmentAmount,
		SaleDate:          req.SaleDate,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &sale); err != nil {
			return err
		}
		if saleType == domain.SaleInstallment {
			ref := billingdomain.BillableRef{Type: billingdomain.BillableSale, ID: sale.ID}
			bills, err := s.billing.GenerateInstallments(ctx, tx, ref, sale.SaleDate, sale.Installments, sale.InstallmentAmount)
			if err != nil {
				return err
			}
			sale.Bills = bills
		}
		return s.propertyRepo.SetListingStatus(ctx, tx, sale.PropertyID, propertydomain.ListingSold)
	})
	if err != nil {
		return domain.Sale{}, err
	}

	s.log.Info("sale created",
		zap.Int64("sale_id", sale.ID.Int64()),
		zap.Int64("property_id", sale.PropertyID.Int64()),
		zap.String("sale_type", string(sale.SaleType)),
		zap.Int("installments", sale.Installments),
	)
	return sale, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	if id == 0 {
		return domain.ErrInvalidID
	}
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}

	ref := billingdomain.BillableRef{Type: billingdomain.BillableSale, ID: id}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.billing.DeleteForBillable(ctx, tx, ref); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.log.Info("sale deleted", zap.Int64("sale_id", id.Int64()))
	return nil
}

func (s *Service) attachBills(ctx context.Context, sale *domain.Sale) error {
	bills, err := s.billing.ListBillsForBillable(ctx, billingdomain.BillableRef{
		Type: billingdomain.BillableSale,
		ID:   sale.ID,
	})
	if err != nil {
		return err
	}
	sale.Bills = bills
	return nil
}
