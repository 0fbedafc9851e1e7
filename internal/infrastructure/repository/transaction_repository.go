package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/sangkips/tablepos/internal/domain/enum"
	domainRepo "github.com/sangkips/tablepos/internal/domain/repository"
	"github.com/sangkips/tablepos/pkg/apperror"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) domainRepo.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, in *domainRepo.CreateTransactionInput) (*entity.Transaction, error) {
	// A retried checkout must not apply stock or cash twice.
	existing, err := r.GetByCheckoutKey(ctx, in.CheckoutKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	created := &entity.Transaction{
		CheckoutKey:     in.CheckoutKey,
		TotalAmount:     in.TotalAmount,
		PaidAmount:      in.PaidAmount,
		AmountToDebt:    in.AmountToDebt,
		ChangeDue:       in.ChangeDue,
		PaymentMethod:   in.PaymentMethod,
		CustomerID:      in.CustomerID,
		CustomerName:    in.CustomerName,
		CashierID:       in.CashierID,
		CashierName:     in.CashierName,
		DrawerID:        in.DrawerID,
		TableID:         in.TableID,
		Notes:           in.Notes,
		TransactionDate: time.Now(),
		Details:         entity.DetailsFromLines(in.Lines),
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := decrementStock(tx, in.Lines); err != nil {
			return err
		}

		if err := tx.Create(created).Error; err != nil {
			return err
		}

		if cash := created.CashReceived(); cash.IsPositive() {
			drawer, err := lockDrawer(tx, in.DrawerID)
			if err != nil {
				return err
			}
			if err := drawer.ApplyCashIn(cash); err != nil {
				return err
			}
			txID := created.ID
			if err := saveDrawerMovement(tx, drawer, &entity.DrawerMovement{
				Kind:          enum.MovementSale,
				Amount:        cash,
				BalanceAfter:  drawer.CurrentBalance,
				TransactionID: &txID,
			}); err != nil {
				return err
			}
		}

		if in.AmountToDebt.IsPositive() && in.CustomerID != nil {
			if err := tx.Model(&entity.Customer{}).
				Where("id = ?", *in.CustomerID).
				Update("debt", gorm.Expr("debt + ?", in.AmountToDebt)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapDB("create transaction", err)
	}
	return created, nil
}

// decrementStock atomically removes each line's units, failing the whole
// database transaction when any product is short.
func decrementStock(tx *gorm.DB, lines []entity.LineItem) error {
	var short []string
	for _, l := range lines {
		units := l.StockUnits()
		result := tx.Model(&entity.Product{}).
			Where("id = ? AND quantity >= ?", l.ProductID(), units).
			Update("quantity", gorm.Expr("quantity - ?", units))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			name := l.ProductID().String()
			if l.Product != nil && l.Product.Name != "" {
				name = l.Product.Name
			}
			short = append(short, name)
		}
	}
	if len(short) > 0 {
		return apperror.NewInventoryError(short)
	}
	return nil
}

func (r *transactionRepository) GetWithDetails(ctx context.Context, id uint) (*entity.Transaction, error) {
	var t entity.Transaction
	err := r.db.WithContext(ctx).
		Preload("Details").
		First(&t, "id = ?", id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDB("load transaction", err)
	}
	return &t, nil
}

func (r *transactionRepository) GetByCheckoutKey(ctx context.Context, key uuid.UUID) (*entity.Transaction, error) {
	var t entity.Transaction
	err := r.db.WithContext(ctx).
		Preload("Details").
		First(&t, "checkout_key = ?", key).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDB("load transaction", err)
	}
	return &t, nil
}

// Update is the explicit edit path. It replaces the details and moves stock
// by the difference between the old and new quantities.
func (r *transactionRepository) Update(ctx context.Context, t *entity.Transaction, details []entity.TransactionDetail) (bool, error) {
	updated := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var old []entity.TransactionDetail
		if err := tx.Where("transaction_id = ?", t.ID).Find(&old).Error; err != nil {
			return err
		}

		delta, err := stockDelta(tx, old, details)
		if err != nil {
			return err
		}
		for productID, units := range delta {
			if units.IsZero() {
				continue
			}
			result := tx.Model(&entity.Product{}).
				Where("id = ? AND quantity >= ?", productID, units).
				Update("quantity", gorm.Expr("quantity - ?", units))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return apperror.NewInventoryError([]string{productID.String()})
			}
		}

		if err := tx.Where("transaction_id = ?", t.ID).Delete(&entity.TransactionDetail{}).Error; err != nil {
			return err
		}
		total := decimal.Zero
		for i := range details {
			details[i].ID = 0
			details[i].TransactionID = t.ID
			total = total.Add(details[i].Total)
		}
		if len(details) > 0 {
			if err := tx.Create(&details).Error; err != nil {
				return err
			}
		}

		t.TotalAmount = total
		result := tx.Model(&entity.Transaction{}).Where("id = ?", t.ID).Updates(map[string]interface{}{
			"total_amount":  t.TotalAmount,
			"paid_amount":   t.PaidAmount,
			"customer_id":   t.CustomerID,
			"customer_name": t.CustomerName,
			"notes":         t.Notes,
		})
		if result.Error != nil {
			return result.Error
		}
		updated = result.RowsAffected > 0
		t.Details = details
		return nil
	})
	if err != nil {
		return false, wrapDB("update transaction", err)
	}
	return updated, nil
}

// stockDelta returns, per product, the extra base units the new details
// consume (negative when stock goes back).
func stockDelta(tx *gorm.DB, old, updated []entity.TransactionDetail) (map[uuid.UUID]decimal.Decimal, error) {
	ids := make([]uuid.UUID, 0, len(old)+len(updated))
	for _, d := range append(append([]entity.TransactionDetail{}, old...), updated...) {
		ids = append(ids, d.ProductID)
	}
	var products []entity.Product
	if len(ids) > 0 {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id IN ?", ids).Find(&products).Error; err != nil {
			return nil, err
		}
	}
	box := make(map[uuid.UUID]int64, len(products))
	for i := range products {
		box[products[i].ID] = int64(products[i].UnitsPerBox())
	}
	units := func(d entity.TransactionDetail) decimal.Decimal {
		if d.IsBoxUnit && box[d.ProductID] > 1 {
			return d.Quantity.Mul(decimal.NewFromInt(box[d.ProductID]))
		}
		return d.Quantity
	}

	delta := make(map[uuid.UUID]decimal.Decimal)
	for _, d := range old {
		delta[d.ProductID] = delta[d.ProductID].Sub(units(d))
	}
	for _, d := range updated {
		delta[d.ProductID] = delta[d.ProductID].Add(units(d))
	}
	return delta, nil
}

func (r *transactionRepository) GetNextID(ctx context.Context, id uint) (*uint, error) {
	return r.neighbour(ctx, "id > ?", "id ASC", id)
}

func (r *transactionRepository) GetPreviousID(ctx context.Context, id uint) (*uint, error) {
	return r.neighbour(ctx, "id < ?", "id DESC", id)
}

func (r *transactionRepository) neighbour(ctx context.Context, where, order string, id uint) (*uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&entity.Transaction{}).
		Where(where, id).
		Order(order).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, wrapDB("navigate transactions", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return &ids[0], nil
}
