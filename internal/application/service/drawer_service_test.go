package service

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/domain/enum"
	"github.com/sangkips/tablepos/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawerServiceOpenIsIdempotent(t *testing.T) {
	f := newFixture(t)

	first := f.openDrawer("50")
	again, err := f.drawers.Open(f.ctx, f.cashier, dec("999"), "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.True(t, dec("50").Equal(again.OpeningBalance))

	_, err = f.drawers.Open(f.ctx, f.cashier, dec("-1"), "")
	assert.ErrorIs(t, err, apperror.ErrNegativeAmount)
}

func TestDrawerServiceCashMovesKeepBalance(t *testing.T) {
	f := newFixture(t)
	d := f.openDrawer("50")

	_, err := f.drawers.CashIn(f.ctx, d.ID, dec("20"), "  float  ")
	require.NoError(t, err)
	_, err = f.drawers.CashIn(f.ctx, d.ID, dec("5"), " ")
	assert.ErrorIs(t, err, apperror.ErrReasonRequired)
	_, err = f.drawers.CashOut(f.ctx, d.ID, dec("0"), "nothing")
	assert.ErrorIs(t, err, apperror.ErrAmountNotPositive)
	_, err = f.drawers.CashOut(f.ctx, d.ID, dec("71"), "too much")
	assert.ErrorIs(t, err, apperror.ErrInsufficientFunds)

	got, err := f.drawers.CashOut(f.ctx, d.ID, dec("5"), "milk")
	require.NoError(t, err)
	assert.True(t, dec("65").Equal(got.CurrentBalance))
	assert.True(t, got.CurrentBalance.Equal(got.ExpectedBalance()))

	movements, err := f.drawers.Movements(f.ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, movements, 3)
	assert.Equal(t, "float", movements[1].Notes)
}

func TestDrawerServiceConcurrentCashIn(t *testing.T) {
	f := newFixture(t)
	d := f.openDrawer("0")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.drawers.CashIn(f.ctx, d.ID, dec("1.50"), "tips")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := f.drawers.Get(f.ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, dec("15").Equal(got.CurrentBalance), got.CurrentBalance.String())
	assert.True(t, got.CurrentBalance.Equal(got.ExpectedBalance()))
}

func TestDrawerServiceCloseOnce(t *testing.T) {
	f := newFixture(t)
	d := f.openDrawer("50")

	closed, err := f.drawers.Close(f.ctx, d.ID, dec("48"), "end of shift")
	require.NoError(t, err)
	assert.Equal(t, enum.DrawerStatusClosed, closed.Status)
	assert.True(t, dec("-2").Equal(closed.NetCashFlow))

	_, err = f.drawers.Close(f.ctx, d.ID, dec("48"), "")
	assert.ErrorIs(t, err, apperror.ErrDrawerNotOpen)
	_, err = f.drawers.CashIn(f.ctx, d.ID, dec("1"), "late")
	assert.ErrorIs(t, err, apperror.ErrDrawerNotOpen)

	current, err := f.drawers.Current(f.ctx, f.cashier.ID)
	require.NoError(t, err)
	assert.Nil(t, current)

	reopened := f.openDrawer("10")
	assert.NotEqual(t, d.ID, reopened.ID)
}

func TestDrawerServiceUnknownDrawer(t *testing.T) {
	f := newFixture(t)

	_, err := f.drawers.Get(f.ctx, uuid.New())
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	_, err = f.drawers.PrintReport(f.ctx, uuid.New())
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestDrawerServicePrintReportWithoutPrinter(t *testing.T) {
	f := newFixture(t)
	d := f.openDrawer("50")

	outcome, err := f.drawers.PrintReport(f.ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, PrintNotConfigured, outcome)
}
