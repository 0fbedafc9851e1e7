package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/application/service"
	"github.com/sangkips/tablepos/internal/presentation/http/dto/request"
	"github.com/sangkips/tablepos/internal/presentation/http/dto/response"
	"github.com/sangkips/tablepos/internal/presentation/http/middleware"
)

// SessionHandler exposes the authenticated cashier's working session.
type SessionHandler struct {
	sessions *service.SessionManager
	bus      *service.EventBus
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *service.SessionManager, bus *service.EventBus) *SessionHandler {
	return &SessionHandler{sessions: sessions, bus: bus}
}

func (h *SessionHandler) session(c *gin.Context) (*service.Session, bool) {
	cashier, ok := currentCashier(c)
	if !ok {
		return nil, false
	}
	return h.sessions.Get(cashier), true
}

// Get returns the session state.
func (h *SessionHandler) Get(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	response.OK(c, "Session retrieved successfully", s.State())
}

// End parks the active cart and ends the session.
func (h *SessionHandler) End(c *gin.Context) {
	cashier, ok := currentCashier(c)
	if !ok {
		return
	}
	h.sessions.End(cashier.ID)
	response.NoContent(c)
}

// SwitchTable saves the current cart and loads the table's. The nil uuid selects the counter.
func (h *SessionHandler) SwitchTable(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	state, err := s.SwitchTable(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Table switched", state)
}

// CloseTable discards a table's cart.
func (h *SessionHandler) CloseTable(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := s.CloseTable(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Table closed", s.State())
}

func (h *SessionHandler) AddItem(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req request.AddItemRequest
	if !bind(c, &req) {
		return
	}
	change, err := s.AddProduct(c.Request.Context(), service.AddProductInput{
		ProductID: req.ProductID,
		Code:      req.Code,
		Quantity:  req.Quantity,
		Box:       req.Box,
		Wholesale: req.Wholesale,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item added", change)
}

func (h *SessionHandler) EditItem(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	lineID, ok := uuidParam(c, "line")
	if !ok {
		return
	}
	var req request.EditItemRequest
	if !bind(c, &req) {
		return
	}
	change, err := s.EditLine(c.Request.Context(), lineID, service.LineEdit{
		Quantity:      req.Quantity,
		UnitPrice:     req.UnitPrice,
		DiscountKind:  req.DiscountKind,
		DiscountInput: req.DiscountInput,
		Wholesale:     req.Wholesale,
		Box:           req.Box,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item updated", change)
}

func (h *SessionHandler) RemoveItem(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	lineID, ok := uuidParam(c, "line")
	if !ok {
		return
	}
	change, err := s.RemoveLine(c.Request.Context(), lineID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item removed", change)
}

// SetWholesaleMode reprices every line for wholesale or retail.
func (h *SessionHandler) SetWholesaleMode(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req request.WholesaleModeRequest
	if !bind(c, &req) {
		return
	}
	change, err := s.SetWholesaleMode(c.Request.Context(), req.Enabled)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Wholesale mode updated", change)
}

func (h *SessionHandler) SelectCustomer(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req request.SelectCustomerRequest
	if !bind(c, &req) {
		return
	}
	state, err := s.SelectCustomer(c.Request.Context(), req.CustomerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Customer selected", state)
}

func (h *SessionHandler) SetPayment(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req request.PaymentRequest
	if !bind(c, &req) {
		return
	}
	state, err := s.SetPayment(req.PaidAmount, req.AddToDebt, req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Payment updated", state)
}

// Hold parks the active cart off the table.
func (h *SessionHandler) Hold(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req request.HoldCartRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			response.BadRequest(c, "Invalid request: "+err.Error())
			return
		}
	}
	held, err := s.HoldCart(c.Request.Context(), req.Label)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Cart held", held)
}

func (h *SessionHandler) Restore(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	state, err := s.RestoreHeld(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Held cart restored", state)
}

// Checkout sells the active cart. The Idempotency-Key header makes a repeat
// of the same request return the sale already made.
func (h *SessionHandler) Checkout(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	result, err := s.Checkout(c.Request.Context(), middleware.GetCheckoutKey(c))
	if err != nil {
		var checkoutErr *service.CheckoutError
		if errors.As(err, &checkoutErr) && checkoutErr.Record != nil {
			response.ErrorWithData(c, err, gin.H{
				"failed_transaction_id": checkoutErr.Record.ID,
				"recorded":              checkoutErr.RecordErr == nil,
			})
			return
		}
		response.Error(c, err)
		return
	}
	response.Created(c, "Checkout completed", result)
}

// Events streams the cashier's session events as server-sent events.
func (h *SessionHandler) Events(c *gin.Context) {
	cashier, ok := currentCashier(c)
	if !ok {
		return
	}
	events, unsubscribe := h.bus.Subscribe(32)
	defer unsubscribe()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case e, open := <-events:
			if !open {
				return false
			}
			if e.CashierID == cashier.ID || e.CashierID == uuid.Nil {
				c.SSEvent(string(e.Kind), e)
			}
			return true
		}
	})
}
