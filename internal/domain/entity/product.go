package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a sellable item. The session core treats it as read-only.
type Product struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Name           string          `gorm:"size:255;not null" json:"name"`
	Code           string          `gorm:"size:100;uniqueIndex;not null" json:"code"`
	Quantity       decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"quantity"` // stock in base units
	SalePrice      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"sale_price"`
	WholesalePrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"wholesale_price"`
	BoxQuantity    int             `gorm:"not null" json:"box_quantity"` // base units per box, 1 when sold singly
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

// NewProduct builds a product with its optional box quantity defaulted.
func NewProduct(name, code string, salePrice, wholesalePrice decimal.Decimal, boxQuantity int) *Product {
	p := &Product{
		ID:             uuid.New(),
		Name:           name,
		Code:           code,
		SalePrice:      salePrice,
		WholesalePrice: wholesalePrice,
		BoxQuantity:    boxQuantity,
	}
	if p.BoxQuantity < 1 {
		p.BoxQuantity = 1
	}
	return p
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.BoxQuantity < 1 {
		p.BoxQuantity = 1
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// UnitsPerBox returns how many base units one box holds.
func (p *Product) UnitsPerBox() int {
	if p == nil || p.BoxQuantity < 1 {
		return 1
	}
	return p.BoxQuantity
}
