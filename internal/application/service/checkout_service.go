package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/sangkips/tablepos/internal/domain/enum"
	"github.com/sangkips/tablepos/internal/domain/repository"
	"github.com/sangkips/tablepos/pkg/apperror"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReceiptPrinter prints a committed sale and returns a human-readable outcome.
type ReceiptPrinter interface {
	PrintReceipt(ctx context.Context, tx *entity.Transaction, lines []entity.LineItem, customerID *uuid.UUID, exchangeRate decimal.Decimal) string
}

// CheckoutOptions holds shop settings used at checkout.
type CheckoutOptions struct {
	ExchangeRate decimal.Decimal
	WalkInName   string
}

// CheckoutRequest is everything a checkout needs. A zero CheckoutKey gets a
// fresh one; reusing a key never applies a sale twice.
type CheckoutRequest struct {
	CheckoutKey uuid.UUID
	Cashier     entity.Cashier
	TableID     *uuid.UUID
	Lines       []entity.LineItem
	CustomerID  *uuid.UUID
	PaidAmount  decimal.Decimal
	AddToDebt   bool
	Notes       string

	// KeepChangedTable resets TableID after the sale only if the table still
	// holds exactly Lines. Retries set it, since the table may be in use again.
	KeepChangedTable bool
}

// CheckoutResult describes a committed sale.
type CheckoutResult struct {
	Transaction   *entity.Transaction `json:"transaction"`
	PaymentMethod enum.PaymentMethod  `json:"payment_method"`
	ChangeDue     decimal.Decimal     `json:"change_due"`
	AmountToDebt  decimal.Decimal     `json:"amount_to_debt"`
	Drawer        *entity.Drawer      `json:"drawer,omitempty"`
	PrintOutcome  string              `json:"print_outcome"`
}

// Payment is the settlement of a cart total.
type Payment struct {
	Total        decimal.Decimal
	Method       enum.PaymentMethod
	AmountToDebt decimal.Decimal
	ChangeDue    decimal.Decimal
}

// ComputePayment splits paid against total. Debt applies only with the debt
// flag, change only without it.
func ComputePayment(total, paid decimal.Decimal, addToDebt bool) Payment {
	p := Payment{Total: total, Method: enum.PaymentCash, AmountToDebt: decimal.Zero, ChangeDue: decimal.Zero}
	if addToDebt {
		p.AmountToDebt = decimal.Max(decimal.Zero, total.Sub(paid))
		if p.AmountToDebt.IsPositive() {
			p.Method = enum.PaymentDebt
		}
		return p
	}
	p.ChangeDue = decimal.Max(decimal.Zero, paid.Sub(total))
	return p
}

// CheckoutError is a checkout that failed after it reached a collaborator.
// Record is the failed transaction kept for recovery; RecordErr is set when
// even that could not be stored.
type CheckoutError struct {
	Record    *entity.FailedTransaction
	RecordErr error
	Err       error
}

func (e *CheckoutError) Error() string {
	return e.Err.Error()
}

func (e *CheckoutError) Unwrap() error {
	return e.Err
}

// stageError marks a failure that must be recorded for recovery, with the
// context known when it happened.
type stageError struct {
	component    enum.FailureComponent
	err          error
	drawerID     *uuid.UUID
	customerName string
}

// CheckoutService runs the checkout sequence. Checkouts are serialized per
// table and per drawer.
type CheckoutService struct {
	transactions repository.TransactionRepository
	drawers      repository.DrawerRepository
	customers    repository.CustomerRepository
	store        *TableStore
	tables       *TableService
	recorder     *FailureRecorder
	printer      ReceiptPrinter
	locks        *KeyedLocker
	bus          *EventBus
	opts         CheckoutOptions
	log          *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	transactions repository.TransactionRepository,
	drawers repository.DrawerRepository,
	customers repository.CustomerRepository,
	store *TableStore,
	tables *TableService,
	recorder *FailureRecorder,
	printer ReceiptPrinter,
	locks *KeyedLocker,
	bus *EventBus,
	opts CheckoutOptions,
	log *zap.Logger,
) *CheckoutService {
	if opts.WalkInName == "" {
		opts.WalkInName = entity.WalkInCustomerName
	}
	return &CheckoutService{
		transactions: transactions,
		drawers:      drawers,
		customers:    customers,
		store:        store,
		tables:       tables,
		recorder:     recorder,
		printer:      printer,
		locks:        locks,
		bus:          bus,
		opts:         opts,
		log:          log.Named("checkout"),
	}
}

// Checkout completes a sale. Precondition failures return a plain error and
// change nothing. Failures after that return a *CheckoutError carrying the
// failed transaction recorded for retry. req.Lines is never modified.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if req.CheckoutKey == uuid.Nil {
		req.CheckoutKey = uuid.New()
	}
	result, failure, err := s.submit(ctx, req)
	if failure == nil {
		return result, err
	}

	record := s.failureRecord(req, failure)
	recordErr := s.recorder.Record(ctx, record)
	s.log.Error("checkout failed",
		zap.String("checkout_key", req.CheckoutKey.String()),
		zap.Stringer("component", failure.component),
		zap.String("failed_transaction_id", record.ID.String()),
		zap.Error(failure.err),
	)
	s.publish(req, EventCheckoutFailed, failure.err.Error())
	return nil, &CheckoutError{Record: record, RecordErr: recordErr, Err: failure.err}
}

// Submit runs the checkout without recording failures. Recovery uses it to
// retry an existing failed transaction.
func (s *CheckoutService) Submit(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if req.CheckoutKey == uuid.Nil {
		req.CheckoutKey = uuid.New()
	}
	result, failure, err := s.submit(ctx, req)
	if failure != nil {
		return nil, failure.err
	}
	return result, err
}

func (s *CheckoutService) submit(ctx context.Context, req CheckoutRequest) (*CheckoutResult, *stageError, error) {
	if req.TableID != nil {
		unlock, err := s.locks.Lock(ctx, tableKey(*req.TableID))
		if err != nil {
			return nil, nil, err
		}
		defer unlock()
	}

	drawer, err := s.drawers.GetOpenDrawer(ctx, req.Cashier.ID)
	if err != nil {
		return nil, &stageError{component: enum.FailureDrawer, err: err}, nil
	}
	if drawer == nil {
		return nil, nil, apperror.ErrDrawerNotOpen
	}

	unlock, err := s.locks.Lock(ctx, drawerKey(drawer.ID))
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	// The drawer may have closed while we waited for it.
	if drawer, err = s.drawers.GetByID(ctx, drawer.ID); err != nil {
		return nil, &stageError{component: enum.FailureDrawer, err: err}, nil
	}
	if !drawer.IsOpen() {
		return nil, nil, apperror.ErrDrawerNotOpen
	}

	if len(req.Lines) == 0 {
		return nil, nil, apperror.ErrEmptyCart
	}
	if req.PaidAmount.IsNegative() {
		return nil, nil, apperror.ErrNegativeAmount
	}

	paid := req.PaidAmount.Round(2)
	total := entity.LinesTotal(req.Lines).Round(2)
	payment := ComputePayment(total, paid, req.AddToDebt)

	var customer *entity.Customer
	if req.CustomerID != nil {
		customer, err = s.customers.GetByID(ctx, *req.CustomerID)
		if err != nil {
			return nil, &stageError{component: enum.FailureDatabase, err: err}, nil
		}
		if customer == nil {
			return nil, nil, apperror.NewNotFoundError("Customer")
		}
	}
	if payment.AmountToDebt.IsPositive() && !customer.IsRegistered() {
		return nil, nil, apperror.ErrDebtNeedsCustomer
	}
	if !req.AddToDebt && paid.LessThan(total) {
		return nil, nil, apperror.ErrInsufficientPay
	}

	if !customer.IsRegistered() {
		if customer, err = s.walkIn(ctx); err != nil {
			return nil, &stageError{component: enum.FailureDatabase, err: err}, nil
		}
	}

	// Past this point the sale may commit, so caller cancellation is ignored.
	commitCtx := context.WithoutCancel(ctx)
	customerID := customer.ID
	tx, err := s.transactions.Create(commitCtx, &repository.CreateTransactionInput{
		CheckoutKey:   req.CheckoutKey,
		Lines:         req.Lines,
		TotalAmount:   total,
		PaidAmount:    paid,
		AmountToDebt:  payment.AmountToDebt,
		ChangeDue:     payment.ChangeDue,
		PaymentMethod: payment.Method,
		CashierID:     req.Cashier.ID,
		CashierName:   req.Cashier.Name,
		DrawerID:      drawer.ID,
		CustomerID:    &customerID,
		CustomerName:  customer.Name,
		TableID:       req.TableID,
		Notes:         req.Notes,
	})
	if err != nil {
		drawerID := drawer.ID
		return nil, &stageError{
			component:    failureComponent(err),
			err:          err,
			drawerID:     &drawerID,
			customerName: customer.Name,
		}, nil
	}

	result := &CheckoutResult{
		Transaction:   tx,
		PaymentMethod: tx.PaymentMethod,
		ChangeDue:     tx.ChangeDue,
		AmountToDebt:  tx.AmountToDebt,
		Drawer:        drawer,
	}
	s.log.Info("checkout completed",
		zap.Uint("transaction_id", tx.ID),
		zap.String("checkout_key", req.CheckoutKey.String()),
		zap.String("total", tx.TotalAmount.StringFixed(2)),
		zap.String("payment_method", string(tx.PaymentMethod)),
	)

	s.afterCommit(commitCtx, req, result)
	return result, nil, nil
}

// afterCommit runs the steps outside the sale's success boundary. Their
// failures are logged and reported, never returned.
func (s *CheckoutService) afterCommit(ctx context.Context, req CheckoutRequest, result *CheckoutResult) {
	tx := result.Transaction

	result.PrintOutcome = s.printer.PrintReceipt(ctx, tx, req.Lines, tx.CustomerID, s.opts.ExchangeRate)
	if result.PrintOutcome != PrintOK && result.PrintOutcome != PrintNotConfigured {
		s.publish(req, EventPrintFailed, result.PrintOutcome)
	}

	if req.TableID != nil {
		s.clearTable(ctx, req)
	}

	drawer, err := s.drawers.GetByID(ctx, tx.DrawerID)
	if err != nil {
		s.log.Warn("drawer refresh failed", zap.String("drawer_id", tx.DrawerID.String()), zap.Error(err))
	} else if drawer != nil {
		result.Drawer = drawer
	}

	s.publish(req, EventCheckoutCompleted, "")
}

func (s *CheckoutService) clearTable(ctx context.Context, req CheckoutRequest) {
	tableID := *req.TableID
	if req.KeepChangedTable {
		if !s.store.ClearIfMatches(tableID, req.Lines) {
			s.log.Info("table kept, its cart changed since the sale was taken", zap.String("table_id", tableID.String()))
			return
		}
	} else {
		s.store.Clear(tableID)
	}
	if _, err := s.tables.SyncStatus(ctx, tableID); err != nil {
		s.log.Warn("table status not updated after checkout", zap.String("table_id", tableID.String()), zap.Error(err))
	}
}

// walkIn returns the walk-in customer, creating it on first use.
func (s *CheckoutService) walkIn(ctx context.Context) (*entity.Customer, error) {
	c, err := s.customers.GetWalkIn(ctx)
	if err != nil {
		return nil, err
	}
	if c != nil {
		return c, nil
	}
	c = &entity.Customer{Name: s.opts.WalkInName, IsWalkIn: true}
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info("walk-in customer created", zap.String("customer_id", c.ID.String()))
	return c, nil
}

func (s *CheckoutService) failureRecord(req CheckoutRequest, failure *stageError) *entity.FailedTransaction {
	record := &entity.FailedTransaction{
		ID:               uuid.New(),
		CheckoutKey:      req.CheckoutKey,
		Items:            entity.CloneLines(req.Lines),
		CustomerID:       req.CustomerID,
		CustomerName:     failure.customerName,
		CashierID:        req.Cashier.ID,
		CashierName:      req.Cashier.Name,
		DrawerID:         failure.drawerID,
		TableID:          req.TableID,
		PaidAmount:       req.PaidAmount,
		AddToDebt:        req.AddToDebt,
		FailureComponent: failure.component,
		ErrorDetail:      failure.err.Error(),
		CanRetry:         retryable(failure.err),
		Status:           enum.FailedPending,
		Attempts:         1,
		CreatedAt:        time.Now(),
	}
	if record.CustomerName == "" && req.CustomerID == nil {
		record.CustomerName = s.opts.WalkInName
	}
	return record
}

func (s *CheckoutService) publish(req CheckoutRequest, kind EventKind, msg string) {
	if s.bus == nil {
		return
	}
	e := Event{Kind: kind, CashierID: req.Cashier.ID, Message: msg}
	if req.TableID != nil {
		e.TableID = *req.TableID
	}
	s.bus.Publish(e)
}

func failureComponent(err error) enum.FailureComponent {
	switch apperror.KindOf(err) {
	case apperror.KindDrawer:
		return enum.FailureDrawer
	case apperror.KindInventory:
		return enum.FailureInventory
	case apperror.KindPersistence:
		return enum.FailureDatabase
	default:
		return enum.FailureUnknown
	}
}

// retryable is false for failures no retry can fix.
func retryable(err error) bool {
	switch apperror.KindOf(err) {
	case apperror.KindValidation, apperror.KindNotFound:
		return false
	default:
		return true
	}
}
