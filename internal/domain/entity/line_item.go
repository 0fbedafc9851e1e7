package entity

import (
	"slices"

	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// LineItem is one cart line. It is a value type: assigning or cloning a
// slice of LineItems never shares quantity, price or discount state. Only
// the Product pointer is shared, and products are never mutated by the cart.
type LineItem struct {
	LineID         uuid.UUID         `json:"line_id"`
	Product        *Product          `json:"product"`
	Quantity       decimal.Decimal   `json:"quantity"`
	UnitPrice      decimal.Decimal   `json:"unit_price"`
	DiscountAmount decimal.Decimal   `json:"discount_amount"`
	DiscountKind   enum.DiscountKind `json:"discount_kind"`
	DiscountInput  decimal.Decimal   `json:"discount_input"`
	IsBoxUnit      bool              `json:"is_box_unit"`
	IsWholesale    bool              `json:"is_wholesale"`
}

// Subtotal is quantity times unit price, before discount.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// Total is the subtotal less the discount, with the discount clamped to [0, subtotal].
func (l LineItem) Total() decimal.Decimal {
	sub := l.Subtotal()
	d := l.DiscountAmount
	if d.GreaterThan(sub) {
		d = sub
	}
	if d.IsNegative() {
		d = decimal.Zero
	}
	return sub.Sub(d)
}

// StockUnits is the number of base units this line removes from inventory.
func (l LineItem) StockUnits() decimal.Decimal {
	if l.IsBoxUnit {
		return l.Quantity.Mul(decimal.NewFromInt(int64(l.Product.UnitsPerBox())))
	}
	return l.Quantity
}

// ProductID returns the line's product id, or uuid.Nil for a detached line.
func (l LineItem) ProductID() uuid.UUID {
	if l.Product == nil {
		return uuid.Nil
	}
	return l.Product.ID
}

// CloneLines returns a copy of lines backed by a fresh array.
func CloneLines(lines []LineItem) []LineItem {
	if lines == nil {
		return nil
	}
	return slices.Clone(lines)
}

// SameLines reports whether a and b hold the same lines in the same order,
// comparing line id, product, quantity, price, discount and unit.
func SameLines(a, b []LineItem) bool {
	return slices.EqualFunc(a, b, func(x, y LineItem) bool {
		return x.LineID == y.LineID &&
			x.ProductID() == y.ProductID() &&
			x.Quantity.Equal(y.Quantity) &&
			x.UnitPrice.Equal(y.UnitPrice) &&
			x.DiscountAmount.Equal(y.DiscountAmount) &&
			x.IsBoxUnit == y.IsBoxUnit
	})
}

// LinesTotal sums the totals of lines.
func LinesTotal(lines []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Total())
	}
	return total
}
