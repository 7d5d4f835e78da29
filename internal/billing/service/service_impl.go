package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vivendahq/vivenda/internal/billing/domain"
	"github.com/vivendahq/vivenda/pkg/db/pagination"
)

const defaultPageSize = 20

func installmentDescription(n, total int) string {
	return fmt.Sprintf("Installment %d of %d", n, total)
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  domain.Repository
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("billing.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) CreateBill(ctx context.Context, req domain.CreateBillRequest) (domain.Bill, error) {
	if !req.Billable.Valid() {
		return domain.Bill{}, domain.ErrInvalidBillable
	}
	if req.DueDate.IsZero() {
		return domain.Bill{}, domain.ErrInvalidDueDate
	}
	if req.Amount < 0 {
		return domain.Bill{}, domain.ErrInvalidAmount
	}

	billable, err := s.repo.ResolveBillable(ctx, s.db, req.Billable)
	if err != nil {
		return domain.Bill{}, err
	}
	if billable == nil {
		return domain.Bill{}, domain.ErrBillableNotFound
	}

	now := time.Now().UTC()
	bill := domain.Bill{
		ID:           s.genID.Generate(),
		BillableType: req.Billable.Type,
		BillableID:   req.Billable.ID,
		DueDate:      req.DueDate,
		Amount:       req.Amount,
		Status:       domain.BillPending,
		Description:  req.Description,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.InsertBill(ctx, s.db, &bill); err != nil {
		return domain.Bill{}, err
	}

	s.log.Info("bill created",
		zap.Int64("bill_id", bill.ID.Int64()),
		zap.String("billable_type", string(bill.BillableType)),
		zap.Int64("billable_id", bill.BillableID.Int64()),
		zap.Int64("amount", bill.Amount),
	)
	return bill, nil
}

func (s *Service) GetBill(ctx context.Context, id snowflake.ID) (domain.Bill, error) {
	if id == 0 {
		return domain.Bill{}, domain.ErrInvalidBillID
	}
	bill, err := s.repo.FindBillByID(ctx, s.db, id)
	if err != nil {
		return domain.Bill{}, err
	}
	if bill == nil {
		return domain.Bill{}, domain.ErrBillNotFound
	}
	if billable, err := s.repo.ResolveBillable(ctx, s.db, bill.Ref()); err == nil {
		bill.Billable = billable
	}
	return *bill, nil
}

func (s *Service) ListBills(ctx context.Context, req domain.ListBillsRequest) (domain.BillPage, error) {
	page := req.Page.Normalize(defaultPageSize)
	items, total, err := s.repo.ListBills(ctx, s.db, req.Filter, page)
	if err != nil {
		return domain.BillPage{}, err
	}
	bills := make([]domain.Bill, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		bills = append(bills, *item)
	}
	return domain.BillPage{
		Bills:    bills,
		PageInfo: pagination.BuildPageInfo(page, total),
	}, nil
}

func (s *Service) ListBillsForBillable(ctx context.Context, ref domain.BillableRef) ([]domain.Bill, error) {
	if !ref.Valid() {
		return nil, domain.ErrInvalidBillable
	}
	items, err := s.repo.ListBillsForBillable(ctx, s.db, ref)
	if err != nil {
		return nil, err
	}
	bills := make([]domain.Bill, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		bills = append(bills, *item)
	}
	return bills, nil
}

// GenerateInstallments writes count bills against ref, the i-th due exactly
// i calendar months after baseDate. It runs inside the caller's transaction
// so the parent sale and its schedule commit or roll back together.
func (s *Service) GenerateInstallments(ctx context.Context, tx *gorm.DB, ref domain.BillableRef, baseDate time.Time, count int, amount int64) ([]domain.Bill, error) {
	if !ref.Valid() {
		return nil, domain.ErrInvalidBillable
	}
	if count <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if baseDate.IsZero() {
		return nil, domain.ErrInvalidDueDate
	}

	now := time.Now().UTC()
	bills := make([]*domain.Bill, 0, count)
	for i := 1; i <= count; i++ {
		bills = append(bills, &domain.Bill{
			ID:           s.genID.Generate(),
			BillableType: ref.Type,
			BillableID:   ref.ID,
			DueDate:      baseDate.AddDate(0, i, 0),
			Amount:       amount,
			Status:       domain.BillPending,
			Description:  installmentDescription(i, count),
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	if err := s.repo.InsertBills(ctx, tx, bills); err != nil {
		return nil, err
	}

	out := make([]domain.Bill, 0, len(bills))
	for _, bill := range bills {
		out = append(out, *bill)
	}
	return out, nil
}

func (s *Service) DeleteForBillable(ctx context.Context, tx *gorm.DB, ref domain.BillableRef) error {
	if !ref.Valid() {
		return domain.ErrInvalidBillable
	}
	return s.repo.DeleteBillsForBillable(ctx, tx, ref)
}

// RecordPayment appends a payment and recomputes the bill status in one
// transaction. The bill row is locked first so concurrent payments serialize
// and the status never regresses from paid.
func (s *Service) RecordPayment(ctx context.Context, req domain.RecordPaymentRequest) (domain.Payment, error) {
	if req.BillID == 0 {
		return domain.Payment{}, domain.ErrInvalidBillID
	}
	if req.Amount < 0 {
		return domain.Payment{}, domain.ErrInvalidAmount
	}
	if req.PaymentDate.IsZero() {
		return domain.Payment{}, domain.ErrInvalidPaymentDate
	}

	var payment domain.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		bill, err := s.repo.FindBillForUpdate(ctx, tx, req.BillID)
		if err != nil {
			return err
		}
		if bill == nil {
			return domain.ErrBillNotFound
		}

		payment = domain.Payment{
			ID:            s.genID.Generate(),
			BillID:        bill.ID,
			PaymentDate:   req.PaymentDate,
			Amount:        req.Amount,
			PaymentMethod: req.PaymentMethod,
			Notes:         req.Notes,
			CreatedAt:     time.Now().UTC(),
		}
		if err := s.repo.InsertPayment(ctx, tx, &payment); err != nil {
			return err
		}

		total, err := s.repo.SumPayments(ctx, tx, bill.ID)
		if err != nil {
			return err
		}
		status := domain.BillPending
		if total >= bill.Amount {
			status = domain.BillPaid
		}
		// Never revert a bill that was already marked paid.
		if bill.Status == domain.BillPaid {
			status = domain.BillPaid
		}
		if status != bill.Status {
			if err := s.repo.UpdateBillStatus(ctx, tx, bill.ID, status); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Payment{}, err
	}

	if bill, err := s.GetBill(ctx, payment.BillID); err == nil {
		payment.Bill = &bill
	}

	s.log.Info("payment recorded",
		zap.Int64("bill_id", payment.BillID.Int64()),
		zap.Int64("payment_id", payment.ID.Int64()),
		zap.Int64("amount", payment.Amount),
	)
	return payment, nil
}

func (s *Service) ListPayments(ctx context.Context) ([]domain.Payment, error) {
	items, err := s.repo.ListPayments(ctx, s.db)
	if err != nil {
		return nil, err
	}
	// Billables repeat across installments; resolve each ref once.
	resolved := make(map[domain.BillableRef]any)
	payments := make([]domain.Payment, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if item.Bill != nil {
			ref := item.Bill.Ref()
			billable, ok := resolved[ref]
			if !ok {
				billable, err = s.repo.ResolveBillable(ctx, s.db, ref)
				if err != nil {
					return nil, err
				}
				resolved[ref] = billable
			}
			item.Bill.Billable = billable
		}
		payments = append(payments, *item)
	}
	return payments, nil
}
