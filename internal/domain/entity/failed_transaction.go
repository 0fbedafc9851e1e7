package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FailedTransaction is a checkout attempt that did not complete, kept for
// operator-initiated retry or cancellation.
type FailedTransaction struct {
	ID               uuid.UUID             `gorm:"type:uuid;primary_key" json:"id"`
	CheckoutKey      uuid.UUID             `gorm:"type:uuid;not null;index" json:"checkout_key"`
	Items            []LineItem            `gorm:"serializer:json;type:text" json:"items"`
	CustomerID       *uuid.UUID            `gorm:"type:uuid" json:"customer_id,omitempty"`
	CustomerName     string                `gorm:"size:255" json:"customer_name"`
	CashierID        uuid.UUID             `gorm:"type:uuid;not null;index" json:"cashier_id"`
	CashierName      string                `gorm:"size:255" json:"cashier_name"`
	DrawerID         *uuid.UUID            `gorm:"type:uuid" json:"drawer_id,omitempty"`
	TableID          *uuid.UUID            `gorm:"type:uuid" json:"table_id,omitempty"`
	PaidAmount       decimal.Decimal       `gorm:"type:decimal(12,2);not null" json:"paid_amount"`
	AddToDebt        bool                  `json:"add_to_debt"`
	FailureComponent enum.FailureComponent `gorm:"not null" json:"failure_component"`
	ErrorDetail      string                `gorm:"type:text" json:"error_detail"`
	CanRetry         bool                  `json:"can_retry"`
	Status           enum.FailedStatus     `gorm:"size:20;not null;index" json:"status"`
	Attempts         int                   `gorm:"not null" json:"attempts"`
	TransactionID    *uint                 `json:"transaction_id,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
	ResolvedAt       *time.Time            `json:"resolved_at,omitempty"`
}

// BeforeCreate generates a UUID before creating a new record
func (f *FailedTransaction) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the FailedTransaction model
func (FailedTransaction) TableName() string {
	return "failed_transactions"
}

// Total sums the snapshot's line totals.
func (f *FailedTransaction) Total() decimal.Decimal {
	return LinesTotal(f.Items)
}

// IsPending reports whether the record still awaits retry or cancellation.
func (f *FailedTransaction) IsPending() bool {
	return f.Status == enum.FailedPending
}

// MarkResolved settles the record with the transaction a retry produced.
func (f *FailedTransaction) MarkResolved(transactionID uint, now time.Time) {
	f.Status = enum.FailedResolved
	f.CanRetry = false
	f.TransactionID = &transactionID
	f.ResolvedAt = &now
}

// MarkCancelled settles the record without side effects.
func (f *FailedTransaction) MarkCancelled(now time.Time) {
	f.Status = enum.FailedCancelled
	f.CanRetry = false
	f.ResolvedAt = &now
}

// RecordAttempt notes one more failed retry. There is no attempt limit.
func (f *FailedTransaction) RecordAttempt(component enum.FailureComponent, detail string, retryable bool) {
	f.Attempts++
	f.FailureComponent = component
	f.ErrorDetail = detail
	f.CanRetry = retryable && f.IsPending()
}
