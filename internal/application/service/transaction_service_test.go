package service

import (
	"testing"

	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/sangkips/tablepos/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sell(t *testing.T, f *fixture, lines ...entity.LineItem) *entity.Transaction {
	t.Helper()
	result, err := f.checkout.Checkout(f.ctx, CheckoutRequest{
		Cashier:    f.cashier,
		Lines:      lines,
		PaidAmount: entity.LinesTotal(lines),
	})
	require.NoError(t, err)
	return result.Transaction
}

func TestTransactionServiceUpdateMovesStock(t *testing.T) {
	f := newFixture(t)
	f.openDrawer("50")
	tea := f.product("tea", "10", 1)
	tx := sell(t, f, cartLine(tea, "4", "10"))
	require.True(t, dec("6").Equal(f.stock(tea)))

	notes := "customer returned one"
	got, err := f.txns.Update(f.ctx, tx.ID, UpdateTransactionInput{
		Items: []UpdateItemInput{{ProductID: tea.ID, Quantity: dec("3"), UnitPrice: dec("10"), DiscountAmount: dec("50")}},
		Notes: &notes,
	})
	require.NoError(t, err)
	assert.True(t, dec("7").Equal(f.stock(tea)))
	assert.True(t, got.TotalAmount.IsZero(), "discount is clamped to the subtotal")
	assert.Equal(t, notes, got.Notes)
	require.Len(t, got.Details, 1)
	assert.True(t, dec("3").Equal(got.Details[0].Quantity))

	_, err = f.txns.Update(f.ctx, tx.ID, UpdateTransactionInput{
		Items: []UpdateItemInput{{ProductID: tea.ID, Quantity: dec("50"), UnitPrice: dec("10")}},
	})
	assert.Equal(t, apperror.KindInventory, apperror.KindOf(err))
	assert.True(t, dec("7").Equal(f.stock(tea)))
}

func TestTransactionServiceRejectsBadEdits(t *testing.T) {
	f := newFixture(t)
	f.openDrawer("50")
	tea := f.product("tea", "10", 1)
	tx := sell(t, f, cartLine(tea, "1", "10"))

	_, err := f.txns.Update(f.ctx, tx.ID, UpdateTransactionInput{})
	assert.ErrorIs(t, err, apperror.ErrEmptyCart)

	_, err = f.txns.Update(f.ctx, tx.ID, UpdateTransactionInput{
		Items: []UpdateItemInput{{ProductID: tea.ID, Quantity: dec("0"), UnitPrice: dec("10")}},
	})
	assert.ErrorIs(t, err, apperror.ErrAmountNotPositive)

	_, err = f.txns.Update(f.ctx, tx.ID+100, UpdateTransactionInput{
		Items: []UpdateItemInput{{ProductID: tea.ID, Quantity: dec("1"), UnitPrice: dec("10")}},
	})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestTransactionServiceNavigation(t *testing.T) {
	f := newFixture(t)
	f.openDrawer("50")
	tea := f.product("tea", "10", 1)
	first := sell(t, f, cartLine(tea, "1", "10"))
	second := sell(t, f, cartLine(tea, "1", "10"))

	next, err := f.txns.Next(f.ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, second.ID, *next)

	prev, err := f.txns.Previous(f.ctx, first.ID)
	require.NoError(t, err)
	assert.Nil(t, prev)

	outcome, err := f.txns.Reprint(f.ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, PrintNotConfigured, outcome)
}
