package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/sangkips/tablepos/internal/domain/enum"
	"github.com/sangkips/tablepos/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePayment(t *testing.T) {
	tests := []struct {
		name      string
		total     string
		paid      string
		addToDebt bool
		method    enum.PaymentMethod
		debt      string
		change    string
	}{
		{"exact cash", "100", "100", false, enum.PaymentCash, "0", "0"},
		{"cash with change", "100", "120", false, enum.PaymentCash, "0", "20"},
		{"part debt", "100", "40", true, enum.PaymentDebt, "60", "0"},
		{"debt flag fully paid", "100", "100", true, enum.PaymentCash, "0", "0"},
		{"debt flag overpaid gives no change", "100", "150", true, enum.PaymentCash, "0", "0"},
		{"short without debt", "100", "40", false, enum.PaymentCash, "0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ComputePayment(dec(tt.total), dec(tt.paid), tt.addToDebt)
			assert.Equal(t, tt.method, p.Method)
			assert.True(t, dec(tt.debt).Equal(p.AmountToDebt), "debt %s", p.AmountToDebt)
			assert.True(t, dec(tt.change).Equal(p.ChangeDue), "change %s", p.ChangeDue)
		})
	}
}

func TestCheckoutCashSale(t *testing.T) {
	f := newFixture(t)
	drawer := f.openDrawer("50")
	tea := f.product("tea", "10", 1)
	table := f.tableID[0]

	lines := []entity.LineItem{cartLine(tea, "10", "10")}
	d := entity.NewTableTransactionData(f.store.now())
	d.LineItems = lines
	f.store.Save(table, d)
	_, err := f.tables.SyncStatus(f.ctx, table)
	require.NoError(t, err)
	require.Equal(t, "Occupied", f.tableStatus(table))

	events, stop := f.bus.Subscribe(16)
	defer stop()

	result, err := f.checkout.Checkout(f.ctx, CheckoutRequest{
		Cashier:    f.cashier,
		TableID:    &table,
		Lines:      lines,
		PaidAmount: dec("100"),
	})
	require.NoError(t, err)

	assert.Equal(t, enum.PaymentCash, result.PaymentMethod)
	assert.True(t, result.ChangeDue.IsZero())
	assert.True(t, result.AmountToDebt.IsZero())
	assert.Equal(t, PrintNotConfigured, result.PrintOutcome)
	assert.True(t, dec("150").Equal(result.Drawer.CurrentBalance), result.Drawer.CurrentBalance.String())
	assert.Equal(t, drawer.ID, result.Transaction.DrawerID)
	assert.Equal(t, entity.WalkInCustomerName, result.Transaction.CustomerName)

	assert.True(t, f.stock(tea).IsZero())
	assert.Empty(t, f.store.Load(table).LineItems)
	assert.Equal(t, "Available", f.tableStatus(table))
	assert.True(t, dec("10").Equal(lines[0].Quantity), "request lines are not modified")

	var kinds []EventKind
	for len(events) > 0 {
		kinds = append(kinds, (<-events).Kind)
	}
	assert.Contains(t, kinds, EventCheckoutCompleted)
}

func TestCheckoutChangeOnlyCountsTotalIntoDrawer(t *testing.T) {
	f := newFixture(t)
	f.openDrawer("50")
	tea := f.product("tea", "10", 1)

	result, err := f.checkout.Checkout(f.ctx, CheckoutRequest{
		Cashier:    f.cashier,
		Lines:      []entity.LineItem{cartLine(tea, "2", "10")},
		PaidAmount: dec("50"),
	})
	require.NoError(t, err)
	assert.True(t, dec("30").Equal(result.ChangeDue))
	assert.True(t, dec("70").Equal(result.Drawer.CurrentBalance), result.Drawer.CurrentBalance.String())
}

func TestCheckoutDebtSale(t *testing.T) {
	f := newFixture(t)
	f.openDrawer("50")
	tea := f.product("tea", "10", 1)
	customer := f.customer("Baraka")

	result, err := f.checkout.Checkout(f.ctx, CheckoutRequest{
		Cashier:    f.cashier,
		Lines:      []entity.LineItem{cartLine(tea, "10", "10")},
		CustomerID: &customer.ID,
		PaidAmount: dec("40"),
		AddToDebt:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, enum.PaymentDebt, result.PaymentMethod)
	assert.True(t, dec("60").Equal(result.AmountToDebt))
	assert.True(t, result.ChangeDue.IsZero())
	assert.True(t, dec("90").Equal(result.Drawer.CurrentBalance), result.Drawer.CurrentBalance.String())

	got, err := f.customers.GetByID(f.ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, dec("60").Equal(got.Debt), got.Debt.String())
}

func TestCheckoutPreconditionsChangeNothing(t *testing.T) {
	tests := []struct {
		name    string
		open    bool
		lines   int
		paid    string
		debt    bool
		wantErr error
	}{
		{"drawer not open", false, 1, "100", false, apperror.ErrDrawerNotOpen},
		{"empty cart", true, 0, "0", false, apperror.ErrEmptyCart},
		{"negative paid", true, 1, "-1", false, apperror.ErrNegativeAmount},
		{"walk-in debt", true, 1, "40", true, apperror.ErrDebtNeedsCustomer},
		{"insufficient pay", true, 1, "40", false, apperror.ErrInsufficientPay},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.open {
				f.openDrawer("50")
			}
			tea := f.product("tea", "10", 1)
			var lines []entity.LineItem
			if tt.lines > 0 {
				lines = []entity.LineItem{cartLine(tea, "10", "10")}
			}
			key := uuid.New()

			result, err := f.checkout.Checkout(f.ctx, CheckoutRequest{
				CheckoutKey: key,
				Cashier:     f.cashier,
				Lines:       lines,
				PaidAmount:  dec(tt.paid),
				AddToDebt:   tt.debt,
			})
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.wantErr)

			var checkoutErr *CheckoutError
			assert.False(t, errors.As(err, &checkoutErr), "precondition failures are not recorded")
			records, err := f.failedRepo.List(f.ctx, nil)
			require.NoError(t, err)
			assert.Empty(t, records)

			tx, err := f.transactions.GetByCheckoutKey(f.ctx, key)
			require.NoError(t, err)
			assert.Nil(t, tx)
			assert.True(t, dec("10").Equal(f.stock(tea)))
		})
	}
}

func TestCheckoutUnknownCustomer(t *testing.T) {
	f := newFixture(t)
	f.openDrawer("50")
	tea := f.product("tea", "10", 1)
	missing := uuid.New()

	_, err := f.checkout.Checkout(f.ctx, CheckoutRequest{
		Cashier:    f.cashier,
		Lines:      []entity.LineItem{cartLine(tea, "1", "10")},
		CustomerID: &missing,
		PaidAmount: dec("10"),
	})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestCheckoutPersistenceFailureIsRecordedOnce(t *testing.T) {
	f := newFixture(t)
	drawer := f.openDrawer("50")
	tea := f.product("tea", "10", 1)
	table := f.tableID[1]
	f.transactions.fail = true

	lines := []entity.LineItem{cartLine(tea, "3", "10")}
	d := entity.NewTableTransactionData(f.store.now())
	d.LineItems = lines
	f.store.Save(table, d)

	key := uuid.New()
	result, err := f.checkout.Checkout(f.ctx, CheckoutRequest{
		CheckoutKey: key,
		Cashier:     f.cashier,
		TableID:     &table,
		Lines:       lines,
		PaidAmount:  dec("30"),
	})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, apperror.KindPersistence, apperror.KindOf(err))

	var checkoutErr *CheckoutError
	require.ErrorAs(t, err, &checkoutErr)
	require.NoError(t, checkoutErr.RecordErr)

	records, err := f.failedRepo.List(f.ctx, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, checkoutErr.Record.ID, rec.ID)
	assert.Equal(t, key, rec.CheckoutKey)
	assert.Equal(t, enum.FailureDatabase, rec.FailureComponent)
	assert.Equal(t, enum.FailedPending, rec.Status)
	assert.True(t, rec.CanRetry)
	assert.Equal(t, 1, rec.Attempts)
	require.NotNil(t, rec.DrawerID)
	assert.Equal(t, drawer.ID, *rec.DrawerID)
	require.Len(t, rec.Items, 1)
	assert.True(t, dec("3").Equal(rec.Items[0].Quantity))

	assert.Len(t, f.store.Load(table).LineItems, 1, "cart stays on the table")
	assert.True(t, dec("10").Equal(f.stock(tea)))
	got, err := f.drawers.Get(f.ctx, drawer.ID)
	require.NoError(t, err)
	assert.True(t, dec("50").Equal(got.CurrentBalance))
}

func TestCheckoutInventoryFailureIsRetryable(t *testing.T) {
	f := newFixture(t)
	f.openDrawer("50")
	tea := f.product("tea", "1", 1)

	_, err := f.checkout.Checkout(f.ctx, CheckoutRequest{
		Cashier:    f.cashier,
		Lines:      []entity.LineItem{cartLine(tea, "5", "10")},
		PaidAmount: dec("50"),
	})
	var checkoutErr *CheckoutError
	require.ErrorAs(t, err, &checkoutErr)
	assert.Equal(t, apperror.KindInventory, apperror.KindOf(err))
	assert.Equal(t, enum.FailureInventory, checkoutErr.Record.FailureComponent)
	assert.True(t, checkoutErr.Record.CanRetry)
	assert.True(t, dec("1").Equal(f.stock(tea)))
}

func TestCheckoutSameKeyCommitsOnce(t *testing.T) {
	f := newFixture(t)
	f.openDrawer("50")
	tea := f.product("tea", "10", 1)
	req := CheckoutRequest{
		CheckoutKey: uuid.New(),
		Cashier:     f.cashier,
		Lines:       []entity.LineItem{cartLine(tea, "2", "10")},
		PaidAmount:  dec("20"),
	}

	first, err := f.checkout.Checkout(f.ctx, req)
	require.NoError(t, err)
	second, err := f.checkout.Checkout(f.ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first.Transaction.ID, second.Transaction.ID)
	assert.True(t, dec("8").Equal(f.stock(tea)))
	assert.True(t, dec("70").Equal(second.Drawer.CurrentBalance), second.Drawer.CurrentBalance.String())
}

func TestCheckoutFallsBackToLocalBackup(t *testing.T) {
	f := newFixture(t, withBrokenFailedRepo())
	f.openDrawer("50")
	tea := f.product("tea", "10", 1)
	f.transactions.fail = true

	_, err := f.checkout.Checkout(f.ctx, CheckoutRequest{
		Cashier:    f.cashier,
		Lines:      []entity.LineItem{cartLine(tea, "1", "10")},
		PaidAmount: dec("10"),
	})
	var checkoutErr *CheckoutError
	require.ErrorAs(t, err, &checkoutErr)
	assert.NoError(t, checkoutErr.RecordErr)

	backups, err := f.backup.ReadAll()
	require.NoError(t, err)
	require.Len(t, backups, 1)
	for _, rec := range backups {
		assert.Equal(t, checkoutErr.Record.ID, rec.ID)
	}
}
