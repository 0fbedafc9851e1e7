package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RestaurantTable represents a physical seating unit
type RestaurantTable struct {
	ID          uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	TableNumber int              `gorm:"uniqueIndex;not null" json:"table_number"`
	Status      enum.TableStatus `gorm:"default:0" json:"status"`
	DisplayName string           `gorm:"size:100" json:"display_name"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new table
func (t *RestaurantTable) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the RestaurantTable model
func (RestaurantTable) TableName() string {
	return "restaurant_tables"
}

// TableTransactionData is the in-progress sale parked on one table.
// It is not persisted; abandoned carts are lost when the table is closed.
type TableTransactionData struct {
	LineItems        []LineItem      `json:"line_items"`
	CustomerID       *uuid.UUID      `json:"customer_id,omitempty"`
	CustomerName     string          `json:"customer_name"`
	SelectedCustomer *Customer       `json:"selected_customer,omitempty"`
	PaidAmount       decimal.Decimal `json:"paid_amount"`
	AddToDebt        bool            `json:"add_to_debt"`
	AmountToDebt     decimal.Decimal `json:"amount_to_debt"`
	LastActivity     time.Time       `json:"last_activity"`
	Notes            string          `json:"notes,omitempty"`
}

// NewTableTransactionData returns the default state of a fresh table.
func NewTableTransactionData(now time.Time) TableTransactionData {
	return TableTransactionData{
		CustomerName: WalkInCustomerName,
		LastActivity: now,
	}
}

// Clone returns a copy whose line items do not alias d's.
func (d TableTransactionData) Clone() TableTransactionData {
	d.LineItems = CloneLines(d.LineItems)
	return d
}

// HasItems reports whether the table carries at least one line.
func (d TableTransactionData) HasItems() bool {
	return len(d.LineItems) > 0
}

// DerivedStatus is Occupied iff the table has at least one line.
func (d TableTransactionData) DerivedStatus() enum.TableStatus {
	if d.HasItems() {
		return enum.TableStatusOccupied
	}
	return enum.TableStatusAvailable
}

// Total sums the table's line totals.
func (d TableTransactionData) Total() decimal.Decimal {
	return LinesTotal(d.LineItems)
}
