package service

import (
	"testing"

	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/sangkips/tablepos/internal/domain/enum"
	"github.com/stretchr/testify/assert"
)

func TestEffectivePrice(t *testing.T) {
	p := entity.NewProduct("Tea", "TEA", dec("10"), dec("8"), 1)
	noWholesale := entity.NewProduct("Water", "WATER", dec("5"), dec("0"), 1)

	tests := []struct {
		name      string
		product   *entity.Product
		requested bool
		mode      bool
		want      string
	}{
		{"retail", p, false, false, "10"},
		{"line wholesale", p, true, false, "8"},
		{"wholesale mode", p, false, true, "8"},
		{"no wholesale price falls back", noWholesale, true, true, "5"},
		{"nil product", nil, true, false, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EffectivePrice(tt.product, tt.requested, tt.mode)
			assert.True(t, dec(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestLinePriceBox(t *testing.T) {
	cake := entity.NewProduct("Cake", "CAKE", dec("2.50"), dec("2"), 6)

	assert.True(t, dec("15").Equal(LinePrice(cake, true, false, false)))
	assert.True(t, dec("12").Equal(LinePrice(cake, true, true, false)))
	assert.True(t, dec("2.5").Equal(LinePrice(cake, false, false, false)))
}

func TestRecomputeDiscount(t *testing.T) {
	tests := []struct {
		name     string
		subtotal string
		kind     enum.DiscountKind
		input    string
		want     string
	}{
		{"fixed", "20", enum.DiscountFixed, "5", "5"},
		{"fixed above subtotal", "20", enum.DiscountFixed, "25", "20"},
		{"fixed negative", "20", enum.DiscountFixed, "-3", "0"},
		{"percent", "20", enum.DiscountPercent, "10", "2"},
		{"percent rounds", "9.99", enum.DiscountPercent, "15", "1.5"},
		{"percent above 100", "20", enum.DiscountPercent, "150", "20"},
		{"zero subtotal", "0", enum.DiscountFixed, "5", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecomputeDiscount(dec(tt.subtotal), tt.kind, dec(tt.input))
			assert.True(t, dec(tt.want).Equal(got), "got %s", got)
		})
	}
}
