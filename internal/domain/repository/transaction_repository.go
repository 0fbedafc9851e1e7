package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/sangkips/tablepos/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// CreateTransactionInput carries everything needed to commit a sale.
type CreateTransactionInput struct {
	CheckoutKey   uuid.UUID
	Lines         []entity.LineItem
	TotalAmount   decimal.Decimal
	PaidAmount    decimal.Decimal
	AmountToDebt  decimal.Decimal
	ChangeDue     decimal.Decimal
	PaymentMethod enum.PaymentMethod
	CashierID     uuid.UUID
	CashierName   string
	DrawerID      uuid.UUID
	CustomerID    *uuid.UUID
	CustomerName  string
	TableID       *uuid.UUID
	Notes         string
}

// TransactionRepository commits and reads completed sales.
//
// Create writes the transaction and its details, decrements stock, records
// the sale's cash in the drawer and charges debt to the customer, all in one
// database transaction. A second Create with the same CheckoutKey returns the
// transaction already committed instead of applying anything again. Stock
// shortfalls fail with an apperror of KindInventory, storage failures with
// KindPersistence.
type TransactionRepository interface {
	Create(ctx context.Context, input *CreateTransactionInput) (*entity.Transaction, error)
	GetWithDetails(ctx context.Context, id uint) (*entity.Transaction, error)
	GetByCheckoutKey(ctx context.Context, key uuid.UUID) (*entity.Transaction, error)
	Update(ctx context.Context, tx *entity.Transaction, details []entity.TransactionDetail) (bool, error)
	GetNextID(ctx context.Context, id uint) (*uint, error)
	GetPreviousID(ctx context.Context, id uint) (*uint, error)
}
