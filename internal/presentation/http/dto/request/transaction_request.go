package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UpdateTransactionRequest replaces the lines of a committed transaction.
type UpdateTransactionRequest struct {
	Items []UpdateTransactionItem `json:"items" binding:"required,min=1,dive"`
	Notes *string                 `json:"notes"`
}

// UpdateTransactionItem is one line of an edited transaction.
type UpdateTransactionItem struct {
	ProductID      uuid.UUID       `json:"product_id" binding:"required"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	IsBoxUnit      bool            `json:"is_box_unit"`
	IsWholesale    bool            `json:"is_wholesale"`
}
