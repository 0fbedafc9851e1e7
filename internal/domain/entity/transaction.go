package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// Transaction is a completed, persisted sale. It is immutable once created
// except through the explicit edit path.
type Transaction struct {
	ID              uint               `gorm:"primaryKey" json:"id"`
	CheckoutKey     uuid.UUID          `gorm:"type:uuid;uniqueIndex;not null" json:"checkout_key"`
	TotalAmount     decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	PaidAmount      decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"paid_amount"`
	AmountToDebt    decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"amount_to_debt"`
	ChangeDue       decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"change_due"`
	PaymentMethod   enum.PaymentMethod `gorm:"size:20;not null" json:"payment_method"`
	CustomerID      *uuid.UUID         `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	CustomerName    string             `gorm:"size:255" json:"customer_name"`
	CashierID       uuid.UUID          `gorm:"type:uuid;not null;index" json:"cashier_id"`
	CashierName     string             `gorm:"size:255" json:"cashier_name"`
	DrawerID        uuid.UUID          `gorm:"type:uuid;not null;index" json:"drawer_id"`
	TableID         *uuid.UUID         `gorm:"type:uuid;index" json:"table_id,omitempty"`
	Notes           string             `gorm:"type:text" json:"notes,omitempty"`
	TransactionDate time.Time          `gorm:"not null;index" json:"transaction_date"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`

	Details []TransactionDetail `gorm:"foreignKey:TransactionID" json:"details,omitempty"`
}

// TableName returns the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}

// CashReceived is the part of the payment that physically enters the drawer.
func (t *Transaction) CashReceived() decimal.Decimal {
	if t.PaidAmount.GreaterThan(t.TotalAmount) {
		return t.TotalAmount
	}
	return t.PaidAmount
}

// TransactionDetail represents a line item in a transaction
type TransactionDetail struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	TransactionID  uint            `gorm:"not null;index" json:"transaction_id"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName    string          `gorm:"size:255" json:"product_name"`
	Quantity       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"quantity"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount_amount"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	IsBoxUnit      bool            `json:"is_box_unit"`
	IsWholesale    bool            `json:"is_wholesale"`
}

// TableName returns the table name for the TransactionDetail model
func (TransactionDetail) TableName() string {
	return "transaction_details"
}

// DetailsFromLines converts cart lines into persisted details.
func DetailsFromLines(lines []LineItem) []TransactionDetail {
	details := make([]TransactionDetail, 0, len(lines))
	for _, l := range lines {
		d := TransactionDetail{
			ProductID:      l.ProductID(),
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			DiscountAmount: l.DiscountAmount,
			Total:          l.Total(),
			IsBoxUnit:      l.IsBoxUnit,
			IsWholesale:    l.IsWholesale,
		}
		if l.Product != nil {
			d.ProductName = l.Product.Name
		}
		details = append(details, d)
	}
	return details
}
