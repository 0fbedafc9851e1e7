package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/domain/enum"
	"github.com/sangkips/tablepos/pkg/apperror"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Drawer is a cashier's till for one shift.
// While open, CurrentBalance == OpeningBalance + CashIn - CashOut.
type Drawer struct {
	ID             uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	CashierID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"cashier_id"`
	CashierName    string            `gorm:"size:255" json:"cashier_name"`
	Status         enum.DrawerStatus `gorm:"not null;index" json:"status"`
	OpeningBalance decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"opening_balance"`
	CashIn         decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"cash_in"`
	CashOut        decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"cash_out"`
	CurrentBalance decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"current_balance"`
	NetCashFlow    decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"net_cash_flow"`
	ClosingBalance *decimal.Decimal  `gorm:"type:decimal(12,2)" json:"closing_balance,omitempty"`
	Notes          string            `gorm:"type:text" json:"notes,omitempty"`
	OpenedAt       time.Time         `gorm:"not null" json:"opened_at"`
	ClosedAt       *time.Time        `json:"closed_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`

	Movements []DrawerMovement `gorm:"foreignKey:DrawerID" json:"movements,omitempty"`
}

// BeforeCreate generates a UUID before creating a new drawer
func (d *Drawer) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Drawer model
func (Drawer) TableName() string {
	return "drawers"
}

// NewOpenDrawer starts a shift.
func NewOpenDrawer(cashierID uuid.UUID, cashierName string, openingBalance decimal.Decimal, notes string, now time.Time) *Drawer {
	return &Drawer{
		ID:             uuid.New(),
		CashierID:      cashierID,
		CashierName:    cashierName,
		Status:         enum.DrawerStatusOpen,
		OpeningBalance: openingBalance,
		CurrentBalance: openingBalance,
		Notes:          notes,
		OpenedAt:       now,
	}
}

// IsOpen reports whether the drawer accepts cash operations.
func (d *Drawer) IsOpen() bool {
	return d != nil && d.Status == enum.DrawerStatusOpen
}

// ExpectedBalance recomputes the balance from its components.
func (d *Drawer) ExpectedBalance() decimal.Decimal {
	return d.OpeningBalance.Add(d.CashIn).Sub(d.CashOut)
}

// ApplyCashIn adds money to an open drawer.
func (d *Drawer) ApplyCashIn(amount decimal.Decimal) error {
	if !d.IsOpen() {
		return apperror.ErrDrawerNotOpen
	}
	if !amount.IsPositive() {
		return apperror.ErrAmountNotPositive
	}
	d.CashIn = d.CashIn.Add(amount)
	d.CurrentBalance = d.CurrentBalance.Add(amount)
	return nil
}

// ApplyCashOut removes money from an open drawer, never below zero.
func (d *Drawer) ApplyCashOut(amount decimal.Decimal) error {
	if !d.IsOpen() {
		return apperror.ErrDrawerNotOpen
	}
	if !amount.IsPositive() {
		return apperror.ErrAmountNotPositive
	}
	if amount.GreaterThan(d.CurrentBalance) {
		return apperror.ErrInsufficientFunds
	}
	d.CashOut = d.CashOut.Add(amount)
	d.CurrentBalance = d.CurrentBalance.Sub(amount)
	return nil
}

// ApplyClose ends the shift and records the counted difference. It is terminal.
func (d *Drawer) ApplyClose(closingBalance decimal.Decimal, notes string, now time.Time) error {
	if !d.IsOpen() {
		return apperror.ErrDrawerNotOpen
	}
	if closingBalance.IsNegative() {
		return apperror.ErrNegativeAmount
	}
	closing := closingBalance
	d.ClosingBalance = &closing
	d.NetCashFlow = closingBalance.Sub(d.CurrentBalance)
	d.Status = enum.DrawerStatusClosed
	d.ClosedAt = &now
	if notes != "" {
		d.Notes = notes
	}
	return nil
}

// DrawerMovement is one immutable entry of a drawer's audit trail
type DrawerMovement struct {
	ID            uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	DrawerID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"drawer_id"`
	Kind          enum.MovementKind `gorm:"size:20;not null" json:"kind"`
	Amount        decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"amount"`
	BalanceAfter  decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"balance_after"`
	Notes         string            `gorm:"size:255" json:"notes,omitempty"`
	TransactionID *uint             `gorm:"index" json:"transaction_id,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new movement
func (m *DrawerMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the DrawerMovement model
func (DrawerMovement) TableName() string {
	return "drawer_movements"
}
