package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/sangkips/tablepos/internal/domain/enum"
	"github.com/sangkips/tablepos/internal/domain/repository"
	"github.com/sangkips/tablepos/pkg/apperror"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TransactionService reads completed sales and owns their explicit edit path.
type TransactionService struct {
	repo         repository.TransactionRepository
	products     repository.ProductRepository
	printer      ReceiptPrinter
	exchangeRate decimal.Decimal
	log          *zap.Logger
}

// NewTransactionService creates a new transaction service
func NewTransactionService(repo repository.TransactionRepository, products repository.ProductRepository, printer ReceiptPrinter, exchangeRate decimal.Decimal, log *zap.Logger) *TransactionService {
	return &TransactionService{
		repo:         repo,
		products:     products,
		printer:      printer,
		exchangeRate: exchangeRate,
		log:          log.Named("transactions"),
	}
}

// Get returns a transaction with its details.
func (s *TransactionService) Get(ctx context.Context, id uint) (*entity.Transaction, error) {
	tx, err := s.repo.GetWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, apperror.NewNotFoundError("Transaction")
	}
	return tx, nil
}

// Next returns the id after id, or nil at the newest transaction.
func (s *TransactionService) Next(ctx context.Context, id uint) (*uint, error) {
	return s.repo.GetNextID(ctx, id)
}

// Previous returns the id before id, or nil at the oldest transaction.
func (s *TransactionService) Previous(ctx context.Context, id uint) (*uint, error) {
	return s.repo.GetPreviousID(ctx, id)
}

// UpdateItemInput is one line of an edited transaction.
type UpdateItemInput struct {
	ProductID      uuid.UUID
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	DiscountAmount decimal.Decimal
	IsBoxUnit      bool
	IsWholesale    bool
}

// UpdateTransactionInput replaces a transaction's lines and notes.
type UpdateTransactionInput struct {
	Items []UpdateItemInput
	Notes *string
}

// Update is the only way a committed transaction changes. Stock moves by the
// difference between old and new quantities.
func (s *TransactionService) Update(ctx context.Context, id uint, in UpdateTransactionInput) (*entity.Transaction, error) {
	if len(in.Items) == 0 {
		return nil, apperror.ErrEmptyCart
	}
	tx, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(in.Items))
	for i, item := range in.Items {
		ids[i] = item.ProductID
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	lines := make([]entity.LineItem, 0, len(in.Items))
	for _, item := range in.Items {
		p, ok := byID[item.ProductID]
		if !ok {
			return nil, apperror.NewNotFoundError("Product " + item.ProductID.String())
		}
		if !item.Quantity.IsPositive() {
			return nil, apperror.ErrAmountNotPositive
		}
		if item.UnitPrice.IsNegative() || item.DiscountAmount.IsNegative() {
			return nil, apperror.ErrNegativeAmount
		}
		l := entity.LineItem{
			LineID:      uuid.New(),
			Product:     p,
			Quantity:    normalizeQuantity(item.Quantity),
			UnitPrice:   item.UnitPrice.Round(2),
			IsBoxUnit:   item.IsBoxUnit,
			IsWholesale: item.IsWholesale,
		}
		l.DiscountAmount = RecomputeDiscount(l.Subtotal(), enum.DiscountFixed, item.DiscountAmount)
		lines = append(lines, l)
	}

	if in.Notes != nil {
		tx.Notes = *in.Notes
	}
	ok, err := s.repo.Update(ctx, tx, entity.DetailsFromLines(lines))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NewNotFoundError("Transaction")
	}
	s.log.Info("transaction edited", zap.Uint("transaction_id", id), zap.String("total", tx.TotalAmount.StringFixed(2)))
	return s.Get(ctx, id)
}

// Reprint prints the receipt of a stored transaction again.
func (s *TransactionService) Reprint(ctx context.Context, id uint) (string, error) {
	tx, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.printer.PrintReceipt(ctx, tx, nil, tx.CustomerID, s.exchangeRate), nil
}
