package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/tablepos/internal/application/service"
	"github.com/sangkips/tablepos/internal/presentation/http/dto/request"
	"github.com/sangkips/tablepos/internal/presentation/http/dto/response"
)

// TransactionHandler handles committed transactions
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

func (h *TransactionHandler) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	tx, err := h.transactionService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Transaction retrieved successfully", tx)
}

// Next returns the id of the following transaction, or null at the end.
func (h *TransactionHandler) Next(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	next, err := h.transactionService.Next(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Next transaction retrieved", gin.H{"id": next})
}

// Previous returns the id of the preceding transaction, or null at the start.
func (h *TransactionHandler) Previous(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	prev, err := h.transactionService.Previous(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Previous transaction retrieved", gin.H{"id": prev})
}

// Update replaces a transaction's lines. Stock follows the quantity changes.
func (h *TransactionHandler) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req request.UpdateTransactionRequest
	if !bind(c, &req) {
		return
	}

	in := service.UpdateTransactionInput{Notes: req.Notes}
	for _, item := range req.Items {
		in.Items = append(in.Items, service.UpdateItemInput{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			DiscountAmount: item.DiscountAmount,
			IsBoxUnit:      item.IsBoxUnit,
			IsWholesale:    item.IsWholesale,
		})
	}

	tx, err := h.transactionService.Update(c.Request.Context(), id, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Transaction updated successfully", tx)
}

// Print reprints the receipt.
func (h *TransactionHandler) Print(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	outcome, err := h.transactionService.Reprint(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, outcome, gin.H{"print_outcome": outcome})
}
