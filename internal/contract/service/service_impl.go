package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	billingdomain "github.com/vivendahq/vivenda/internal/billing/domain"
	"github.com/vivendahq/vivenda/internal/contract/domain"
	propertydomain "github.com/vivendahq/vivenda/internal/property/domain"
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
		log:          p.Log.Named("contract.service"),
		repo:         p.Repo,
		propertyRepo: p.PropertyRepo,
		userRepo:     p.UserRepo,
		billing:      p.Billing,
		genID:        p.GenID,
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Contract, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return dereference(items), nil
}

func (s *Service) ListByProperty(ctx context.Context, propertyID snowflake.ID) ([]domain.Contract, error) {
	if propertyID == 0 {
		return nil, domain.ErrInvalidProperty
	}
	items, err := s.repo.ListByProperty(ctx, s.db, propertyID)
	if err != nil {
		return nil, err
	}
	return dereference(items), nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Contract, error) {
	if id == 0 {
		return domain.Contract{}, domain.ErrInvalidID
	}
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Contract{}, err
	}
	if item == nil {
		return domain.Contract{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateContractRequest) (domain.Contract, error) {
	if req.MonthlyRent < 0 {
		return domain.Contract{}, domain.ErrInvalidRent
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() || !req.EndDate.After(req.StartDate) {
		return domain.Contract{}, domain.ErrInvalidDates
	}

	ok, err := s.propertyRepo.Exists(ctx, s.db, req.PropertyID)
	if err != nil {
		return domain.Contract{}, err
	}
	if !ok {
		return domain.Contract{}, domain.ErrInvalidProperty
	}
	tenant, err := s.userRepo.FindByID(ctx, s.db, req.TenantID)
	if err != nil {
		return domain.Contract{}, err
	}
	if tenant == nil {
		return domain.Contract{}, domain.ErrInvalidTenant
	}

	now := time.Now().UTC()
	contract := domain.Contract{
		ID:              s.genID.Generate(),
		PropertyID:      req.PropertyID,
		TenantID:        req.TenantID,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		MonthlyRent:     req.MonthlyRent,
		SecurityDeposit: req.SecurityDeposit,
		Status:          domain.ContractActive,
		Terms:           req.Terms,
		FilePath:        req.FilePath,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &contract); err != nil {
			return err
		}
		return s.propertyRepo.SetListingStatus(ctx, tx, req.PropertyID, propertydomain.ListingRented)
	})
	if err != nil {
		return domain.Contract{}, err
	}

	s.log.Info("contract created",
		zap.Int64("contract_id", contract.ID.Int64()),
		zap.Int64("property_id", contract.PropertyID.Int64()),
		zap.Int64("tenant_id", contract.TenantID.Int64()),
	)
	return contract, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateContractRequest) (domain.Contract, error) {
	if id == 0 {
		return domain.Contract{}, domain.ErrInvalidID
	}
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Contract{}, err
	}
	if item == nil {
		return domain.Contract{}, domain.ErrNotFound
	}

	if req.StartDate != nil {
		item.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		item.EndDate = *req.EndDate
	}
	if !item.EndDate.After(item.StartDate) {
		return domain.Contract{}, domain.ErrInvalidDates
	}
	if req.MonthlyRent != nil {
		if *req.MonthlyRent < 0 {
			return domain.Contract{}, domain.ErrInvalidRent
		}
		item.MonthlyRent = *req.MonthlyRent
	}
	if req.Status != nil {
		status, ok := domain.ParseContractStatus(*req.Status)
		if !ok {
			return domain.Contract{}, domain.ErrInvalidStatus
		}
		item.Status = status
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return domain.Contract{}, err
	}
	return *item, nil
}

// Delete removes the contract and every bill charged against it in one
// transaction. Payments follow their bills.
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

	ref := billingdomain.BillableRef{Type: billingdomain.BillableContract, ID: id}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.billing.DeleteForBillable(ctx, tx, ref); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.log.Info("contract deleted", zap.Int64("contract_id", id.Int64()))
	return nil
}

func dereference(items []*domain.Contract) []domain.Contract {
	contracts := make([]domain.Contract, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		contracts = append(contracts, *item)
	}
	return contracts
}
