package service

import (
	"slices"

	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/sangkips/tablepos/internal/domain/enum"
	"github.com/sangkips/tablepos/pkg/apperror"
	"github.com/shopspring/decimal"
)

var minQuantity = decimal.RequireFromString("0.1")

// CartChangeKind names what a ledger mutation did.
type CartChangeKind string

const (
	CartLineAdded        CartChangeKind = "line_added"
	CartLineIncremented  CartChangeKind = "line_incremented"
	CartLineUpdated      CartChangeKind = "line_updated"
	CartLineRemoved      CartChangeKind = "line_removed"
	CartCleared          CartChangeKind = "cleared"
	CartReplaced         CartChangeKind = "replaced"
	CartWholesaleToggled CartChangeKind = "wholesale_toggled"
)

// CartChange describes one ledger mutation. Line is a copy of the affected
// line after the change, nil for whole-cart changes.
type CartChange struct {
	Kind   CartChangeKind   `json:"kind"`
	LineID uuid.UUID        `json:"line_id,omitempty"`
	Line   *entity.LineItem `json:"line,omitempty"`
	Lines  int              `json:"lines"`
	Total  decimal.Decimal  `json:"total"`
}

// LineOption adjusts a line created by AddOrIncrement.
type LineOption func(*entity.LineItem)

// AsBox sells the line by the box.
func AsBox() LineOption {
	return func(l *entity.LineItem) { l.IsBoxUnit = true }
}

// AsWholesale marks the line as wholesale.
func AsWholesale() LineOption {
	return func(l *entity.LineItem) { l.IsWholesale = true }
}

// CartLedger is the ordered line list of the active sale. It is not safe for
// concurrent use; the owning Session serializes access.
type CartLedger struct {
	lines         []entity.LineItem
	wholesaleMode bool
}

// NewCartLedger creates an empty ledger.
func NewCartLedger(wholesaleMode bool) *CartLedger {
	return &CartLedger{wholesaleMode: wholesaleMode}
}

// AddOrIncrement merges quantity into the line for the same product and unit,
// keeping that line's price, or appends a new line priced at unitPrice.
func (c *CartLedger) AddOrIncrement(product *entity.Product, quantity, unitPrice decimal.Decimal, opts ...LineOption) (CartChange, error) {
	if product == nil {
		return CartChange{}, apperror.NewBadRequestError("Product is required")
	}
	if !quantity.IsPositive() {
		return CartChange{}, apperror.ErrAmountNotPositive
	}
	if unitPrice.IsNegative() {
		return CartChange{}, apperror.ErrNegativeAmount
	}

	candidate := entity.LineItem{
		LineID:       uuid.New(),
		Product:      product,
		Quantity:     normalizeQuantity(quantity),
		UnitPrice:    unitPrice.Round(2),
		DiscountKind: enum.DiscountFixed,
	}
	for _, opt := range opts {
		opt(&candidate)
	}

	for i := range c.lines {
		l := &c.lines[i]
		if l.ProductID() == product.ID && l.IsBoxUnit == candidate.IsBoxUnit && l.IsWholesale == candidate.IsWholesale {
			l.Quantity = normalizeQuantity(l.Quantity.Add(quantity))
			reprice(l)
			return c.lineChange(CartLineIncremented, i), nil
		}
	}

	reprice(&candidate)
	c.lines = append(c.lines, candidate)
	return c.lineChange(CartLineAdded, len(c.lines)-1), nil
}

// Remove deletes the line with the given id.
func (c *CartLedger) Remove(lineID uuid.UUID) (CartChange, error) {
	i, err := c.index(lineID)
	if err != nil {
		return CartChange{}, err
	}
	c.lines = slices.Delete(c.lines, i, i+1)
	return CartChange{Kind: CartLineRemoved, LineID: lineID, Lines: len(c.lines), Total: c.Total()}, nil
}

// Clear empties the ledger.
func (c *CartLedger) Clear() CartChange {
	c.lines = nil
	return c.cartChange(CartCleared)
}

// Replace installs a copy of lines, e.g. when a table or held cart is restored.
func (c *CartLedger) Replace(lines []entity.LineItem) CartChange {
	c.lines = entity.CloneLines(lines)
	return c.cartChange(CartReplaced)
}

// UpdateQuantity sets a line's quantity, floored at 0.1 and rounded to 2 decimals.
func (c *CartLedger) UpdateQuantity(lineID uuid.UUID, quantity decimal.Decimal) (CartChange, error) {
	return c.update(lineID, func(l *entity.LineItem) error {
		l.Quantity = normalizeQuantity(quantity)
		return nil
	})
}

// UpdatePrice overrides a line's unit price.
func (c *CartLedger) UpdatePrice(lineID uuid.UUID, unitPrice decimal.Decimal) (CartChange, error) {
	return c.update(lineID, func(l *entity.LineItem) error {
		if unitPrice.IsNegative() {
			return apperror.ErrNegativeAmount
		}
		l.UnitPrice = unitPrice.Round(2)
		return nil
	})
}

// SetDiscount stores the discount input; the amount follows the subtotal.
func (c *CartLedger) SetDiscount(lineID uuid.UUID, kind enum.DiscountKind, input decimal.Decimal) (CartChange, error) {
	return c.update(lineID, func(l *entity.LineItem) error {
		if kind != enum.DiscountPercent && kind != enum.DiscountFixed {
			return apperror.NewBadRequestError("Unknown discount kind")
		}
		l.DiscountKind = kind
		l.DiscountInput = input
		return nil
	})
}

// SetWholesale switches one line between retail and wholesale price.
func (c *CartLedger) SetWholesale(lineID uuid.UUID, on bool) (CartChange, error) {
	return c.update(lineID, func(l *entity.LineItem) error {
		l.IsWholesale = on
		l.UnitPrice = LinePrice(l.Product, l.IsBoxUnit, l.IsWholesale, c.wholesaleMode)
		return nil
	})
}

// SetBoxUnit switches one line between single units and boxes.
func (c *CartLedger) SetBoxUnit(lineID uuid.UUID, on bool) (CartChange, error) {
	return c.update(lineID, func(l *entity.LineItem) error {
		l.IsBoxUnit = on
		l.UnitPrice = LinePrice(l.Product, l.IsBoxUnit, l.IsWholesale, c.wholesaleMode)
		return nil
	})
}

// ToggleWholesaleMode sets the cart-wide mode and re-prices every line.
func (c *CartLedger) ToggleWholesaleMode(on bool) CartChange {
	c.wholesaleMode = on
	for i := range c.lines {
		l := &c.lines[i]
		l.UnitPrice = LinePrice(l.Product, l.IsBoxUnit, l.IsWholesale, on)
		reprice(l)
	}
	return c.cartChange(CartWholesaleToggled)
}

// WholesaleMode reports the cart-wide pricing mode.
func (c *CartLedger) WholesaleMode() bool {
	return c.wholesaleMode
}

// Lines returns a copy of the current lines.
func (c *CartLedger) Lines() []entity.LineItem {
	return entity.CloneLines(c.lines)
}

// Line returns a copy of one line.
func (c *CartLedger) Line(lineID uuid.UUID) (entity.LineItem, bool) {
	i, err := c.index(lineID)
	if err != nil {
		return entity.LineItem{}, false
	}
	return c.lines[i], true
}

func (c *CartLedger) Len() int {
	return len(c.lines)
}

func (c *CartLedger) IsEmpty() bool {
	return len(c.lines) == 0
}

// Total is recomputed from the lines on every call.
func (c *CartLedger) Total() decimal.Decimal {
	return entity.LinesTotal(c.lines).Round(2)
}

func (c *CartLedger) update(lineID uuid.UUID, fn func(l *entity.LineItem) error) (CartChange, error) {
	i, err := c.index(lineID)
	if err != nil {
		return CartChange{}, err
	}
	// Work on a copy so a rejected edit leaves the line untouched.
	l := c.lines[i]
	if err := fn(&l); err != nil {
		return CartChange{}, err
	}
	reprice(&l)
	c.lines[i] = l
	return c.lineChange(CartLineUpdated, i), nil
}

func (c *CartLedger) index(lineID uuid.UUID) (int, error) {
	i := slices.IndexFunc(c.lines, func(l entity.LineItem) bool { return l.LineID == lineID })
	if i < 0 {
		return -1, apperror.NewNotFoundError("Cart line")
	}
	return i, nil
}

func (c *CartLedger) lineChange(kind CartChangeKind, i int) CartChange {
	line := c.lines[i]
	return CartChange{Kind: kind, LineID: line.LineID, Line: &line, Lines: len(c.lines), Total: c.Total()}
}

func (c *CartLedger) cartChange(kind CartChangeKind) CartChange {
	return CartChange{Kind: kind, Lines: len(c.lines), Total: c.Total()}
}

// reprice re-derives the discount amount after any change to the line.
func reprice(l *entity.LineItem) {
	l.DiscountAmount = RecomputeDiscount(l.Subtotal(), l.DiscountKind, l.DiscountInput)
}

func normalizeQuantity(q decimal.Decimal) decimal.Decimal {
	q = q.Round(2)
	if q.LessThan(minQuantity) {
		return minQuantity
	}
	return q
}
