package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DrawerRepository persists cash drawers and their audit trail.
// Cash operations are applied atomically with their movement entry.
type DrawerRepository interface {
	GetOpenDrawer(ctx context.Context, cashierID uuid.UUID) (*entity.Drawer, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Drawer, error)
	Open(ctx context.Context, cashierID uuid.UUID, cashierName string, openingBalance decimal.Decimal, notes string) (*entity.Drawer, error)
	CashIn(ctx context.Context, drawerID uuid.UUID, amount decimal.Decimal, notes string) (*entity.Drawer, error)
	CashOut(ctx context.Context, drawerID uuid.UUID, amount decimal.Decimal, notes string) (*entity.Drawer, error)
	Close(ctx context.Context, drawerID uuid.UUID, closingBalance decimal.Decimal, notes string) (*entity.Drawer, error)
	ListMovements(ctx context.Context, drawerID uuid.UUID) ([]entity.DrawerMovement, error)
}
