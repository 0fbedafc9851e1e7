package request

import (
	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// AddItemRequest adds a product by id or by code to the active cart.
type AddItemRequest struct {
	ProductID *uuid.UUID      `json:"product_id"`
	Code      string          `json:"code" binding:"required_without=ProductID"`
	Quantity  decimal.Decimal `json:"quantity"`
	Box       bool            `json:"box"`
	Wholesale bool            `json:"wholesale"`
}

// EditItemRequest changes one cart line. Omitted fields stay as they are.
type EditItemRequest struct {
	Quantity      *decimal.Decimal   `json:"quantity"`
	UnitPrice     *decimal.Decimal   `json:"unit_price"`
	DiscountKind  *enum.DiscountKind `json:"discount_kind" binding:"omitempty,oneof=Fixed Percent"`
	DiscountInput *decimal.Decimal   `json:"discount_input"`
	Wholesale     *bool              `json:"wholesale"`
	Box           *bool              `json:"box"`
}

// SelectCustomerRequest picks the sale's customer. A null id means walk-in.
type SelectCustomerRequest struct {
	CustomerID *uuid.UUID `json:"customer_id"`
}

// PaymentRequest sets the payment fields of the active cart.
type PaymentRequest struct {
	PaidAmount decimal.Decimal `json:"paid_amount"`
	AddToDebt  bool            `json:"add_to_debt"`
	Notes      string          `json:"notes" binding:"max=500"`
}

// WholesaleModeRequest toggles wholesale pricing for the whole cart.
type WholesaleModeRequest struct {
	Enabled bool `json:"enabled"`
}

// HoldCartRequest parks the active cart under an optional label.
type HoldCartRequest struct {
	Label string `json:"label" binding:"max=100"`
}
