package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/sangkips/tablepos/internal/domain/enum"
	"github.com/sangkips/tablepos/internal/domain/repository"
	"github.com/sangkips/tablepos/pkg/apperror"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SessionDeps are the collaborators shared by every session.
type SessionDeps struct {
	Store         *TableStore
	Tables        *TableService
	Checkout      *CheckoutService
	Customers     repository.CustomerRepository
	Products      repository.ProductRepository
	Bus           *EventBus
	WholesaleMode bool
	Log           *zap.Logger
}

// SessionManager owns one Session per logged-in cashier.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	deps     SessionDeps
}

// NewSessionManager creates a new session manager
func NewSessionManager(deps SessionDeps) *SessionManager {
	deps.Log = deps.Log.Named("session")
	return &SessionManager{sessions: make(map[uuid.UUID]*Session), deps: deps}
}

// Get returns the cashier's session, starting one on first use.
func (m *SessionManager) Get(cashier entity.Cashier) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[cashier.ID]
	if !ok {
		s = &Session{
			cashier: cashier,
			deps:    &m.deps,
			ledger:  NewCartLedger(m.deps.WholesaleMode),
		}
		m.sessions[cashier.ID] = s
		m.deps.Log.Info("session started", zap.String("cashier", cashier.Name))
	}
	return s
}

// End parks the active table's cart and forgets the session. Held carts and
// a parked counter cart are dropped.
func (m *SessionManager) End(cashierID uuid.UUID) {
	m.mu.Lock()
	s, ok := m.sessions[cashierID]
	delete(m.sessions, cashierID)
	m.mu.Unlock()
	if ok {
		s.park()
	}
}

// HeldCart is a cart parked away from any table.
type HeldCart struct {
	ID       uuid.UUID         `json:"id"`
	Label    string            `json:"label"`
	Lines    []entity.LineItem `json:"lines"`
	Customer *entity.Customer  `json:"customer,omitempty"`
	Total    decimal.Decimal   `json:"total"`
	HeldAt   time.Time         `json:"held_at"`
}

// SessionState is the read model of a session.
type SessionState struct {
	Cashier       entity.Cashier    `json:"cashier"`
	ActiveTable   *uuid.UUID        `json:"active_table,omitempty"`
	Lines         []entity.LineItem `json:"lines"`
	Total         decimal.Decimal   `json:"total"`
	Customer      *entity.Customer  `json:"customer,omitempty"`
	CustomerName  string            `json:"customer_name"`
	PaidAmount    decimal.Decimal   `json:"paid_amount"`
	AddToDebt     bool              `json:"add_to_debt"`
	AmountToDebt  decimal.Decimal   `json:"amount_to_debt"`
	ChangeDue     decimal.Decimal   `json:"change_due"`
	Notes         string            `json:"notes,omitempty"`
	WholesaleMode bool              `json:"wholesale_mode"`
	Held          []HeldCart        `json:"held,omitempty"`
}

// Session is one cashier's working state: the active table, its cart and
// payment fields, and held carts. Operations run one at a time.
type Session struct {
	mu          sync.Mutex
	cashier     entity.Cashier
	deps        *SessionDeps
	activeTable uuid.UUID
	ledger      *CartLedger
	customer    *entity.Customer
	paid        decimal.Decimal
	addToDebt   bool
	notes       string
	held        []HeldCart
	// counter holds the counter-sale cart while a table is active.
	counter *entity.TableTransactionData
	// settled is the active table's Settled count when it was loaded.
	settled uint64
}

// State returns a copy of the session's state.
func (s *Session) State() SessionState {
	s.lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// SwitchTable parks the current cart on its table and loads tableID's.
// uuid.Nil switches to the counter sale, restoring the counter cart left
// behind by the last switch away from it.
func (s *Session) SwitchTable(ctx context.Context, tableID uuid.UUID) (SessionState, error) {
	s.lock()
	defer s.mu.Unlock()

	if tableID != uuid.Nil {
		if _, err := s.deps.Tables.Get(ctx, tableID); err != nil {
			return SessionState{}, err
		}
	}
	if tableID == s.activeTable {
		return s.stateLocked(), nil
	}

	from := s.activeTable
	snapshot := s.snapshotLocked()
	if from == uuid.Nil {
		s.counter = &snapshot
	}
	var loaded entity.TableTransactionData
	if tableID == uuid.Nil {
		s.deps.Store.Save(from, snapshot)
		loaded = s.takeCounterLocked()
	} else {
		loaded = s.deps.Store.Switch(from, snapshot, tableID)
	}
	s.applyLocked(loaded)
	s.activeTable = tableID
	s.settled = s.deps.Store.Settled(tableID)

	s.syncStatus(ctx, from)
	s.syncStatus(ctx, tableID)
	s.publish(Event{Kind: EventTableSwitched, TableID: tableID})
	return s.stateLocked(), nil
}

// CloseTable discards tableID's cart. Its items are lost.
func (s *Session) CloseTable(ctx context.Context, tableID uuid.UUID) error {
	s.lock()
	defer s.mu.Unlock()

	if _, err := s.deps.Tables.Get(ctx, tableID); err != nil {
		return err
	}
	s.deps.Store.CloseTable(tableID)
	if s.activeTable == tableID {
		s.resetLocked()
		s.activeTable = uuid.Nil
	}
	s.syncStatus(ctx, tableID)
	s.deps.Log.Info("table closed", zap.String("table_id", tableID.String()), zap.String("cashier", s.cashier.Name))
	s.publish(Event{Kind: EventTableClosed, TableID: tableID})
	return nil
}

// AddProductInput selects a product by id or code.
type AddProductInput struct {
	ProductID *uuid.UUID
	Code      string
	Quantity  decimal.Decimal
	Box       bool
	Wholesale bool
}

// AddProduct adds the product at its effective price, merging with an
// existing line for the same unit.
func (s *Session) AddProduct(ctx context.Context, in AddProductInput) (CartChange, error) {
	product, err := s.findProduct(ctx, in)
	if err != nil {
		return CartChange{}, err
	}
	quantity := in.Quantity
	if quantity.IsZero() {
		quantity = decimal.NewFromInt(1)
	}

	var opts []LineOption
	if in.Box {
		opts = append(opts, AsBox())
	}
	if in.Wholesale {
		opts = append(opts, AsWholesale())
	}
	return s.mutate(ctx, func(c *CartLedger) (CartChange, error) {
		price := LinePrice(product, in.Box, in.Wholesale, c.WholesaleMode())
		return c.AddOrIncrement(product, quantity, price, opts...)
	})
}

func (s *Session) RemoveLine(ctx context.Context, lineID uuid.UUID) (CartChange, error) {
	return s.mutate(ctx, func(c *CartLedger) (CartChange, error) { return c.Remove(lineID) })
}

// LineEdit changes the fields that are set.
type LineEdit struct {
	Quantity      *decimal.Decimal
	UnitPrice     *decimal.Decimal
	DiscountKind  *enum.DiscountKind
	DiscountInput *decimal.Decimal
	Wholesale     *bool
	Box           *bool
}

// EditLine applies edit to one line. Either every field applies or none does.
func (s *Session) EditLine(ctx context.Context, lineID uuid.UUID, edit LineEdit) (CartChange, error) {
	return s.mutate(ctx, func(c *CartLedger) (CartChange, error) {
		before := c.Lines()
		change, err := applyEdit(c, lineID, edit)
		if err != nil {
			c.Replace(before)
			return CartChange{}, err
		}
		return change, nil
	})
}

func applyEdit(c *CartLedger, lineID uuid.UUID, edit LineEdit) (CartChange, error) {
	change, err := c.update(lineID, func(*entity.LineItem) error { return nil })
	if err != nil {
		return CartChange{}, err
	}
	if edit.Box != nil {
		if change, err = c.SetBoxUnit(lineID, *edit.Box); err != nil {
			return CartChange{}, err
		}
	}
	if edit.Wholesale != nil {
		if change, err = c.SetWholesale(lineID, *edit.Wholesale); err != nil {
			return CartChange{}, err
		}
	}
	if edit.Quantity != nil {
		if change, err = c.UpdateQuantity(lineID, *edit.Quantity); err != nil {
			return CartChange{}, err
		}
	}
	if edit.UnitPrice != nil {
		if change, err = c.UpdatePrice(lineID, *edit.UnitPrice); err != nil {
			return CartChange{}, err
		}
	}
	if edit.DiscountKind != nil || edit.DiscountInput != nil {
		line, _ := c.Line(lineID)
		kind, input := line.DiscountKind, line.DiscountInput
		if edit.DiscountKind != nil {
			kind = *edit.DiscountKind
		}
		if edit.DiscountInput != nil {
			input = *edit.DiscountInput
		}
		if change, err = c.SetDiscount(lineID, kind, input); err != nil {
			return CartChange{}, err
		}
	}
	return change, nil
}

// SetWholesaleMode switches the cart-wide pricing mode and re-prices all lines.
func (s *Session) SetWholesaleMode(ctx context.Context, on bool) (CartChange, error) {
	return s.mutate(ctx, func(c *CartLedger) (CartChange, error) { return c.ToggleWholesaleMode(on), nil })
}

// SelectCustomer sets the sale's customer. nil selects the walk-in customer.
func (s *Session) SelectCustomer(ctx context.Context, customerID *uuid.UUID) (SessionState, error) {
	var customer *entity.Customer
	if customerID != nil {
		c, err := s.deps.Customers.GetByID(ctx, *customerID)
		if err != nil {
			return SessionState{}, err
		}
		if c == nil {
			return SessionState{}, apperror.NewNotFoundError("Customer")
		}
		if c.IsRegistered() {
			customer = c
		}
	}

	s.lock()
	defer s.mu.Unlock()
	s.customer = customer
	s.saveLocked()
	s.publish(Event{Kind: EventCustomerSelected, TableID: s.activeTable})
	return s.stateLocked(), nil
}

// SetPayment records what the customer pays and whether the rest goes to debt.
func (s *Session) SetPayment(paid decimal.Decimal, addToDebt bool, notes string) (SessionState, error) {
	if paid.IsNegative() {
		return SessionState{}, apperror.ErrNegativeAmount
	}

	s.lock()
	defer s.mu.Unlock()
	s.paid = paid.Round(2)
	s.addToDebt = addToDebt
	s.notes = strings.TrimSpace(notes)
	s.saveLocked()
	s.publish(Event{Kind: EventPaymentChanged, TableID: s.activeTable})
	return s.stateLocked(), nil
}

// HoldCart parks the current cart and customer under label and empties the cart.
func (s *Session) HoldCart(ctx context.Context, label string) (HeldCart, error) {
	s.lock()
	defer s.mu.Unlock()

	if s.ledger.IsEmpty() {
		return HeldCart{}, apperror.ErrEmptyCart
	}
	held := HeldCart{
		ID:       uuid.New(),
		Label:    strings.TrimSpace(label),
		Lines:    s.ledger.Lines(),
		Customer: s.customer,
		Total:    s.ledger.Total(),
		HeldAt:   time.Now(),
	}
	if held.Label == "" {
		held.Label = "Held " + held.HeldAt.Format("15:04")
	}
	s.held = append(s.held, held)

	change := s.ledger.Clear()
	s.customer = nil
	s.saveLocked()
	s.syncStatus(ctx, s.activeTable)
	s.publish(Event{Kind: EventCartHeld, TableID: s.activeTable, Cart: &change, Message: held.Label})
	return held, nil
}

// RestoreHeld brings a held cart back into the empty current cart.
func (s *Session) RestoreHeld(ctx context.Context, heldID uuid.UUID) (SessionState, error) {
	s.lock()
	defer s.mu.Unlock()

	i := -1
	for j := range s.held {
		if s.held[j].ID == heldID {
			i = j
			break
		}
	}
	if i < 0 {
		return SessionState{}, apperror.NewNotFoundError("Held cart")
	}
	if !s.ledger.IsEmpty() {
		return SessionState{}, apperror.NewConflictError("Current cart is not empty")
	}

	held := s.held[i]
	s.held = append(s.held[:i], s.held[i+1:]...)
	change := s.ledger.Replace(held.Lines)
	s.customer = held.Customer
	s.saveLocked()
	s.syncStatus(ctx, s.activeTable)
	s.publish(Event{Kind: EventCartRestored, TableID: s.activeTable, Cart: &change})
	return s.stateLocked(), nil
}

// Checkout sells the current cart. On failure the cart is left as it was.
func (s *Session) Checkout(ctx context.Context, checkoutKey uuid.UUID) (*CheckoutResult, error) {
	s.lock()
	defer s.mu.Unlock()

	req := CheckoutRequest{
		CheckoutKey: checkoutKey,
		Cashier:     s.cashier,
		Lines:       s.ledger.Lines(),
		PaidAmount:  s.paid,
		AddToDebt:   s.addToDebt,
		Notes:       s.notes,
	}
	if s.activeTable != uuid.Nil {
		table := s.activeTable
		req.TableID = &table
		// The table's stored copy must match what is being sold.
		s.saveLocked()
	}
	if s.customer != nil {
		id := s.customer.ID
		req.CustomerID = &id
	}

	result, err := s.deps.Checkout.Checkout(ctx, req)
	if err != nil {
		return nil, err
	}

	change := s.ledger.Clear()
	s.customer = nil
	s.paid = decimal.Zero
	s.addToDebt = false
	s.notes = ""
	s.publish(Event{Kind: EventCartChanged, TableID: s.activeTable, Cart: &change})
	return result, nil
}

// mutate runs a cart change, stores the table copy and publishes the change.
func (s *Session) mutate(ctx context.Context, fn func(c *CartLedger) (CartChange, error)) (CartChange, error) {
	s.lock()
	defer s.mu.Unlock()

	wasEmpty := s.ledger.IsEmpty()
	change, err := fn(s.ledger)
	if err != nil {
		return CartChange{}, err
	}
	s.saveLocked()
	if wasEmpty != s.ledger.IsEmpty() {
		s.syncStatus(ctx, s.activeTable)
	}
	s.publish(Event{Kind: EventCartChanged, TableID: s.activeTable, Cart: &change})
	return change, nil
}

func (s *Session) findProduct(ctx context.Context, in AddProductInput) (*entity.Product, error) {
	var (
		p   *entity.Product
		err error
	)
	switch {
	case in.ProductID != nil:
		p, err = s.deps.Products.GetByID(ctx, *in.ProductID)
	case in.Code != "":
		p, err = s.deps.Products.GetByCode(ctx, strings.TrimSpace(in.Code))
	default:
		return nil, apperror.NewBadRequestError("Product id or code is required")
	}
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return p, nil
}

// lock takes the session lock. When the active table was settled elsewhere,
// as by a retried failed transaction, the session reloads it first.
func (s *Session) lock() {
	s.mu.Lock()
	if s.activeTable == uuid.Nil {
		return
	}
	if n := s.deps.Store.Settled(s.activeTable); n != s.settled {
		s.applyLocked(s.deps.Store.Load(s.activeTable))
		s.settled = n
	}
}

func (s *Session) park() {
	s.lock()
	defer s.mu.Unlock()
	s.saveLocked()
}

func (s *Session) saveLocked() {
	if s.activeTable != uuid.Nil {
		s.deps.Store.Save(s.activeTable, s.snapshotLocked())
	}
}

func (s *Session) takeCounterLocked() entity.TableTransactionData {
	if s.counter == nil {
		return entity.NewTableTransactionData(time.Now())
	}
	d := *s.counter
	s.counter = nil
	return d
}

func (s *Session) snapshotLocked() entity.TableTransactionData {
	d := entity.TableTransactionData{
		LineItems:        s.ledger.Lines(),
		CustomerName:     entity.WalkInCustomerName,
		SelectedCustomer: s.customer,
		PaidAmount:       s.paid,
		AddToDebt:        s.addToDebt,
		AmountToDebt:     ComputePayment(s.ledger.Total(), s.paid, s.addToDebt).AmountToDebt,
		Notes:            s.notes,
	}
	if s.customer != nil {
		id := s.customer.ID
		d.CustomerID = &id
		d.CustomerName = s.customer.Name
	}
	return d
}

func (s *Session) applyLocked(d entity.TableTransactionData) {
	s.ledger.Replace(d.LineItems)
	s.customer = d.SelectedCustomer
	s.paid = d.PaidAmount
	s.addToDebt = d.AddToDebt
	s.notes = d.Notes
}

func (s *Session) resetLocked() {
	s.ledger.Clear()
	s.customer = nil
	s.paid = decimal.Zero
	s.addToDebt = false
	s.notes = ""
}

func (s *Session) stateLocked() SessionState {
	total := s.ledger.Total()
	payment := ComputePayment(total, s.paid, s.addToDebt)
	st := SessionState{
		Cashier:       s.cashier,
		Lines:         s.ledger.Lines(),
		Total:         total,
		Customer:      s.customer,
		CustomerName:  entity.WalkInCustomerName,
		PaidAmount:    s.paid,
		AddToDebt:     s.addToDebt,
		AmountToDebt:  payment.AmountToDebt,
		ChangeDue:     payment.ChangeDue,
		Notes:         s.notes,
		WholesaleMode: s.ledger.WholesaleMode(),
		Held:          make([]HeldCart, len(s.held)),
	}
	if s.activeTable != uuid.Nil {
		table := s.activeTable
		st.ActiveTable = &table
	}
	if s.customer != nil {
		st.CustomerName = s.customer.Name
	}
	for i, h := range s.held {
		h.Lines = entity.CloneLines(h.Lines)
		st.Held[i] = h
	}
	return st
}

func (s *Session) syncStatus(ctx context.Context, tableID uuid.UUID) {
	if tableID == uuid.Nil {
		return
	}
	if _, err := s.deps.Tables.SyncStatus(ctx, tableID); err != nil {
		s.deps.Log.Warn("table status not updated", zap.String("table_id", tableID.String()), zap.Error(err))
	}
}

func (s *Session) publish(e Event) {
	if s.deps.Bus == nil {
		return
	}
	e.CashierID = s.cashier.ID
	s.deps.Bus.Publish(e)
}
