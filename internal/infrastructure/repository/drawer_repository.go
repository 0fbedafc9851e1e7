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

type drawerRepository struct {
	db *gorm.DB
}

// NewDrawerRepository creates a new drawer repository
func NewDrawerRepository(db *gorm.DB) domainRepo.DrawerRepository {
	return &drawerRepository{db: db}
}

func (r *drawerRepository) GetOpenDrawer(ctx context.Context, cashierID uuid.UUID) (*entity.Drawer, error) {
	var drawer entity.Drawer
	err := r.db.WithContext(ctx).
		Where("cashier_id = ? AND status = ?", cashierID, enum.DrawerStatusOpen).
		Order("opened_at DESC").
		First(&drawer).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDB("load open drawer", err)
	}
	return &drawer, nil
}

func (r *drawerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Drawer, error) {
	var drawer entity.Drawer
	err := r.db.WithContext(ctx).First(&drawer, "id = ?", id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDB("load drawer", err)
	}
	return &drawer, nil
}

// Open inserts a new open drawer. It fails with ErrDrawerAlreadyOpen when the
// cashier already has one.
func (r *drawerRepository) Open(ctx context.Context, cashierID uuid.UUID, cashierName string, openingBalance decimal.Decimal, notes string) (*entity.Drawer, error) {
	var drawer *entity.Drawer
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var open int64
		if err := tx.Model(&entity.Drawer{}).
			Where("cashier_id = ? AND status = ?", cashierID, enum.DrawerStatusOpen).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return apperror.ErrDrawerAlreadyOpen
		}

		drawer = entity.NewOpenDrawer(cashierID, cashierName, openingBalance, notes, time.Now())
		if err := tx.Create(drawer).Error; err != nil {
			return err
		}
		return tx.Create(&entity.DrawerMovement{
			DrawerID:     drawer.ID,
			Kind:         enum.MovementOpening,
			Amount:       openingBalance,
			BalanceAfter: openingBalance,
			Notes:        notes,
		}).Error
	})
	if err != nil {
		return nil, wrapDB("open drawer", err)
	}
	return drawer, nil
}

func (r *drawerRepository) CashIn(ctx context.Context, drawerID uuid.UUID, amount decimal.Decimal, notes string) (*entity.Drawer, error) {
	return r.mutate(ctx, drawerID, "record cash in", func(d *entity.Drawer) (*entity.DrawerMovement, error) {
		if err := d.ApplyCashIn(amount); err != nil {
			return nil, err
		}
		return &entity.DrawerMovement{Kind: enum.MovementCashIn, Amount: amount, BalanceAfter: d.CurrentBalance, Notes: notes}, nil
	})
}

func (r *drawerRepository) CashOut(ctx context.Context, drawerID uuid.UUID, amount decimal.Decimal, notes string) (*entity.Drawer, error) {
	return r.mutate(ctx, drawerID, "record cash out", func(d *entity.Drawer) (*entity.DrawerMovement, error) {
		if err := d.ApplyCashOut(amount); err != nil {
			return nil, err
		}
		return &entity.DrawerMovement{Kind: enum.MovementCashOut, Amount: amount, BalanceAfter: d.CurrentBalance, Notes: notes}, nil
	})
}

func (r *drawerRepository) Close(ctx context.Context, drawerID uuid.UUID, closingBalance decimal.Decimal, notes string) (*entity.Drawer, error) {
	return r.mutate(ctx, drawerID, "close drawer", func(d *entity.Drawer) (*entity.DrawerMovement, error) {
		if err := d.ApplyClose(closingBalance, notes, time.Now()); err != nil {
			return nil, err
		}
		return &entity.DrawerMovement{Kind: enum.MovementClosing, Amount: closingBalance, BalanceAfter: d.CurrentBalance, Notes: notes}, nil
	})
}

func (r *drawerRepository) ListMovements(ctx context.Context, drawerID uuid.UUID) ([]entity.DrawerMovement, error) {
	var movements []entity.DrawerMovement
	err := r.db.WithContext(ctx).
		Where("drawer_id = ?", drawerID).
		Order("created_at ASC").
		Find(&movements).Error
	return movements, wrapDB("list drawer movements", err)
}

// mutate row-locks the drawer, applies fn and appends the movement it returns,
// all in one database transaction.
func (r *drawerRepository) mutate(ctx context.Context, drawerID uuid.UUID, op string, fn func(d *entity.Drawer) (*entity.DrawerMovement, error)) (*entity.Drawer, error) {
	var drawer *entity.Drawer
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		drawer, err = lockDrawer(tx, drawerID)
		if err != nil {
			return err
		}
		movement, err := fn(drawer)
		if err != nil {
			return err
		}
		return saveDrawerMovement(tx, drawer, movement)
	})
	if err != nil {
		return nil, wrapDB(op, err)
	}
	return drawer, nil
}

func lockDrawer(tx *gorm.DB, drawerID uuid.UUID) (*entity.Drawer, error) {
	var drawer entity.Drawer
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&drawer, "id = ?", drawerID).Error
	if notFound(err) {
		return nil, apperror.NewNotFoundError("Drawer")
	}
	if err != nil {
		return nil, err
	}
	return &drawer, nil
}

func saveDrawerMovement(tx *gorm.DB, drawer *entity.Drawer, movement *entity.DrawerMovement) error {
	if err := tx.Omit(clause.Associations).Save(drawer).Error; err != nil {
		return err
	}
	movement.DrawerID = drawer.ID
	return tx.Create(movement).Error
}
