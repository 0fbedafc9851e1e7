package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/application/service"
	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/sangkips/tablepos/internal/presentation/http/dto/request"
	"github.com/sangkips/tablepos/internal/presentation/http/dto/response"
	"github.com/shopspring/decimal"
)

type cashMoveFunc func(ctx context.Context, drawerID uuid.UUID, amount decimal.Decimal, reason string) (*entity.Drawer, error)

// DrawerHandler handles cash drawer requests
type DrawerHandler struct {
	drawerService *service.DrawerService
}

// NewDrawerHandler creates a new drawer handler
func NewDrawerHandler(drawerService *service.DrawerService) *DrawerHandler {
	return &DrawerHandler{drawerService: drawerService}
}

// Current returns the cashier's open drawer.
func (h *DrawerHandler) Current(c *gin.Context) {
	cashier, ok := currentCashier(c)
	if !ok {
		return
	}
	drawer, err := h.drawerService.Current(c.Request.Context(), cashier.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Drawer retrieved successfully", drawer)
}

// Open opens a drawer for the cashier, or returns the one already open.
func (h *DrawerHandler) Open(c *gin.Context) {
	cashier, ok := currentCashier(c)
	if !ok {
		return
	}
	var req request.OpenDrawerRequest
	if !bind(c, &req) {
		return
	}
	drawer, err := h.drawerService.Open(c.Request.Context(), cashier, req.OpeningBalance, req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Drawer opened", drawer)
}

func (h *DrawerHandler) CashIn(c *gin.Context) {
	h.cashMove(c, h.drawerService.CashIn, "Cash added")
}

func (h *DrawerHandler) CashOut(c *gin.Context) {
	h.cashMove(c, h.drawerService.CashOut, "Cash removed")
}

func (h *DrawerHandler) cashMove(c *gin.Context, move cashMoveFunc, message string) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req request.CashMoveRequest
	if !bind(c, &req) {
		return
	}
	drawer, err := move(c.Request.Context(), id, req.Amount, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, message, drawer)
}

// Close closes the drawer with the counted balance.
func (h *DrawerHandler) Close(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req request.CloseDrawerRequest
	if !bind(c, &req) {
		return
	}
	drawer, err := h.drawerService.Close(c.Request.Context(), id, req.ClosingBalance, req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Drawer closed", drawer)
}

func (h *DrawerHandler) Movements(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	movements, err := h.drawerService.Movements(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Drawer movements retrieved successfully", movements)
}

// PrintReport prints the drawer summary. A print failure is reported, not raised.
func (h *DrawerHandler) PrintReport(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	outcome, err := h.drawerService.PrintReport(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, outcome, gin.H{"print_outcome": outcome})
}
