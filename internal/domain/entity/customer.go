package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WalkInCustomerName is the display name of the anonymous default customer.
const WalkInCustomerName = "Walk-in Customer"

// Customer represents a buyer; registered customers may carry debt
type Customer struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Phone     *string         `gorm:"size:50" json:"phone,omitempty"`
	IsWalkIn  bool            `gorm:"not null;index" json:"is_walk_in"`
	Debt      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"debt"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new customer
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}

// IsRegistered reports whether the customer can be charged debt.
func (c *Customer) IsRegistered() bool {
	return c != nil && !c.IsWalkIn
}
