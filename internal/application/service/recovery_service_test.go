package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/sangkips/tablepos/internal/domain/enum"
	infra "github.com/sangkips/tablepos/internal/infrastructure/repository"
	"github.com/sangkips/tablepos/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failedCheckout leaves one pending record from a storage outage.
func failedCheckout(t *testing.T, f *fixture, tea *entity.Product, qty string) *entity.FailedTransaction {
	t.Helper()
	f.transactions.fail = true
	defer func() { f.transactions.fail = false }()

	_, err := f.checkout.Checkout(f.ctx, CheckoutRequest{
		Cashier:    f.cashier,
		Lines:      []entity.LineItem{cartLine(tea, qty, "10")},
		PaidAmount: dec(qty).Mul(dec("10")),
	})
	var checkoutErr *CheckoutError
	require.ErrorAs(t, err, &checkoutErr)
	return checkoutErr.Record
}

func TestRecoveryRetryResolves(t *testing.T) {
	f := newFixture(t)
	f.openDrawer("50")
	tea := f.product("tea", "10", 1)
	rec := failedCheckout(t, f, tea, "2")

	result, err := f.recovery.Retry(f.ctx, rec.ID, f.cashier)
	require.NoError(t, err)
	assert.Equal(t, rec.CheckoutKey, result.Transaction.CheckoutKey)
	assert.True(t, dec("8").Equal(f.stock(tea)))

	got, err := f.recovery.Get(f.ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.FailedResolved, got.Status)
	assert.False(t, got.CanRetry)
	require.NotNil(t, got.TransactionID)
	assert.Equal(t, result.Transaction.ID, *got.TransactionID)
	assert.NotNil(t, got.ResolvedAt)

	_, err = f.recovery.Retry(f.ctx, rec.ID, f.cashier)
	assert.ErrorIs(t, err, apperror.ErrNotRetryable)
	assert.True(t, dec("8").Equal(f.stock(tea)), "a resolved record never sells again")

	_, err = f.recovery.Cancel(f.ctx, rec.ID)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

// tableSaleFails fails a checkout of two teas taken on table and leaves the
// cashier's session on that table.
func tableSaleFails(t *testing.T, f *fixture, table uuid.UUID) (*Session, *entity.FailedTransaction) {
	t.Helper()
	s := f.sessions.Get(f.cashier)
	_, err := s.SwitchTable(f.ctx, table)
	require.NoError(t, err)
	_, err = s.AddProduct(f.ctx, AddProductInput{Code: "TEA", Quantity: dec("2")})
	require.NoError(t, err)
	_, err = s.SetPayment(dec("20"), false, "")
	require.NoError(t, err)

	f.transactions.fail = true
	defer func() { f.transactions.fail = false }()
	_, err = s.Checkout(f.ctx, uuid.New())
	var checkoutErr *CheckoutError
	require.ErrorAs(t, err, &checkoutErr)
	require.NotNil(t, checkoutErr.Record.TableID)
	return s, checkoutErr.Record
}

func TestRecoveryRetrySettlesTable(t *testing.T) {
	f := newFixture(t)
	f.openDrawer("50")
	tea := f.product("tea", "10", 1)
	table := f.tableID[0]
	s, rec := tableSaleFails(t, f, table)
	assert.Equal(t, "Occupied", f.tableStatus(table))

	result, err := f.recovery.Retry(f.ctx, rec.ID, f.cashier)
	require.NoError(t, err)
	require.NotNil(t, result.Transaction.TableID)
	assert.Equal(t, table, *result.Transaction.TableID)

	assert.Empty(t, f.store.Load(table).LineItems)
	assert.Equal(t, "Available", f.tableStatus(table))
	assert.Empty(t, s.State().Lines, "the session drops the cart that was sold")

	// Adding to the table now starts a new sale instead of re-saving the old one.
	_, err = s.AddProduct(f.ctx, AddProductInput{Code: "TEA"})
	require.NoError(t, err)
	require.Len(t, f.store.Load(table).LineItems, 1)
	assert.True(t, dec("1").Equal(f.store.Load(table).LineItems[0].Quantity))
	assert.True(t, dec("8").Equal(f.stock(tea)))
}

func TestRecoveryRetryKeepsChangedTable(t *testing.T) {
	f := newFixture(t)
	f.openDrawer("50")
	f.product("tea", "10", 1)
	table := f.tableID[0]
	s, rec := tableSaleFails(t, f, table)

	_, err := s.AddProduct(f.ctx, AddProductInput{Code: "TEA"})
	require.NoError(t, err)

	_, err = f.recovery.Retry(f.ctx, rec.ID, f.cashier)
	require.NoError(t, err)

	st := s.State()
	require.Len(t, st.Lines, 1)
	assert.True(t, dec("3").Equal(st.Lines[0].Quantity))
	assert.Equal(t, "Occupied", f.tableStatus(table))
}

func TestRecoveryRetryFailureCountsAttempt(t *testing.T) {
	f := newFixture(t)
	f.openDrawer("50")
	tea := f.product("tea", "10", 1)
	rec := failedCheckout(t, f, tea, "1")

	f.transactions.fail = true
	_, err := f.recovery.Retry(f.ctx, rec.ID, f.cashier)
	require.Error(t, err)
	f.transactions.fail = false

	got, err := f.recovery.Get(f.ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Attempts)
	assert.Equal(t, enum.FailedPending, got.Status)
	assert.True(t, got.CanRetry)

	records, err := f.recovery.List(f.ctx, nil)
	require.NoError(t, err)
	assert.Len(t, records, 1, "retries do not add records")

	_, err = f.recovery.Retry(f.ctx, rec.ID, f.cashier)
	require.NoError(t, err)
}

func TestRecoveryRetryWithoutDrawerStaysPending(t *testing.T) {
	f := newFixture(t)
	d := f.openDrawer("50")
	tea := f.product("tea", "10", 1)
	rec := failedCheckout(t, f, tea, "1")
	_, err := f.drawers.Close(f.ctx, d.ID, dec("50"), "")
	require.NoError(t, err)

	_, err = f.recovery.Retry(f.ctx, rec.ID, f.cashier)
	assert.ErrorIs(t, err, apperror.ErrDrawerNotOpen)

	got, err := f.recovery.Get(f.ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, got.CanRetry)
	assert.Equal(t, enum.FailureDrawer, got.FailureComponent)
}

func TestRecoveryValidationFailureStopsRetries(t *testing.T) {
	f := newFixture(t)
	f.openDrawer("50")

	rec, err := f.recovery.Record(f.ctx, RecordInput{
		Cashier:   f.cashier,
		Component: enum.FailureUnknown,
		Detail:    "terminal crashed",
	})
	require.NoError(t, err)

	_, err = f.recovery.Retry(f.ctx, rec.ID, f.cashier)
	assert.ErrorIs(t, err, apperror.ErrEmptyCart)

	got, err := f.recovery.Get(f.ctx, rec.ID)
	require.NoError(t, err)
	assert.False(t, got.CanRetry)

	_, err = f.recovery.Retry(f.ctx, rec.ID, f.cashier)
	assert.ErrorIs(t, err, apperror.ErrNotRetryable)
}

func TestRecoveryCancelAndDelete(t *testing.T) {
	f := newFixture(t)
	f.openDrawer("50")
	tea := f.product("tea", "10", 1)
	rec := failedCheckout(t, f, tea, "1")

	err := f.recovery.Delete(f.ctx, rec.ID)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err), "pending records cannot be deleted")

	cancelled, err := f.recovery.Cancel(f.ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.FailedCancelled, cancelled.Status)

	_, err = f.recovery.Retry(f.ctx, rec.ID, f.cashier)
	assert.ErrorIs(t, err, apperror.ErrNotRetryable)
	assert.True(t, dec("10").Equal(f.stock(tea)))

	pending := enum.FailedPending
	records, err := f.recovery.List(f.ctx, &pending)
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, f.recovery.Delete(f.ctx, rec.ID))
	_, err = f.recovery.Get(f.ctx, rec.ID)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestRecoveryUnknownRecord(t *testing.T) {
	f := newFixture(t)

	_, err := f.recovery.Retry(f.ctx, uuid.New(), f.cashier)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestRecoveryImportLocalBackups(t *testing.T) {
	f := newFixture(t, withBrokenFailedRepo())
	f.openDrawer("50")
	tea := f.product("tea", "10", 1)
	rec := failedCheckout(t, f, tea, "1")

	healthy := infra.NewFailedTransactionRepository(f.db)
	recovery := NewRecoveryService(healthy, f.backup, NewFailureRecorder(healthy, f.backup, f.log), f.checkout, f.locks, f.log)

	n, err := recovery.ImportLocalBackups(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := recovery.Get(f.ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.CheckoutKey, got.CheckoutKey)

	left, err := f.backup.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, left)

	n, err = recovery.ImportLocalBackups(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
