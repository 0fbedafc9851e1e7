package service

import (
	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/sangkips/tablepos/internal/domain/enum"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// EffectivePrice returns the unit price of one base unit. Wholesale price
// applies when either flag is set and the product has one.
func EffectivePrice(p *entity.Product, wholesaleRequested, wholesaleModeActive bool) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	if (wholesaleRequested || wholesaleModeActive) && p.WholesalePrice.IsPositive() {
		return p.WholesalePrice
	}
	return p.SalePrice
}

// LinePrice is the effective price of the unit a line is sold in: a whole
// box when isBox is set.
func LinePrice(p *entity.Product, isBox, wholesaleRequested, wholesaleModeActive bool) decimal.Decimal {
	price := EffectivePrice(p, wholesaleRequested, wholesaleModeActive)
	if isBox {
		price = price.Mul(decimal.NewFromInt(int64(p.UnitsPerBox())))
	}
	return price
}

// RecomputeDiscount turns a discount input into an amount within [0, subtotal].
// Percent inputs are clamped to [0, 100].
func RecomputeDiscount(subtotal decimal.Decimal, kind enum.DiscountKind, input decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}
	if kind == enum.DiscountPercent {
		pct := clamp(input, decimal.Zero, hundred)
		return decimal.Min(pct.Div(hundred).Mul(subtotal).Round(2), subtotal)
	}
	return clamp(input, decimal.Zero, subtotal)
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}
