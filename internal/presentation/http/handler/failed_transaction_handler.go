package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/tablepos/internal/application/service"
	"github.com/sangkips/tablepos/internal/domain/enum"
	"github.com/sangkips/tablepos/internal/presentation/http/dto/response"
	"github.com/sangkips/tablepos/pkg/pagination"
)

// FailedTransactionHandler lets an operator review and retry failed checkouts.
type FailedTransactionHandler struct {
	recoveryService *service.RecoveryService
}

// NewFailedTransactionHandler creates a new failed transaction handler
func NewFailedTransactionHandler(recoveryService *service.RecoveryService) *FailedTransactionHandler {
	return &FailedTransactionHandler{recoveryService: recoveryService}
}

// List returns a page of failed transactions, newest first, optionally
// filtered by ?status=Pending|Resolved|Cancelled.
func (h *FailedTransactionHandler) List(c *gin.Context) {
	var params pagination.Params
	if err := c.ShouldBindQuery(&params); err != nil {
		response.BadRequest(c, "Invalid pagination: "+err.Error())
		return
	}

	var status *enum.FailedStatus
	if raw := c.Query("status"); raw != "" {
		s := enum.FailedStatus(raw)
		switch s {
		case enum.FailedPending, enum.FailedResolved, enum.FailedCancelled:
		default:
			response.BadRequest(c, "Invalid status filter")
			return
		}
		status = &s
	}

	records, err := h.recoveryService.List(c.Request.Context(), status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, "Failed transactions retrieved successfully", pagination.Slice(records, params))
}

func (h *FailedTransactionHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	record, err := h.recoveryService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Failed transaction retrieved successfully", record)
}

// Retry resubmits the sale using the retrying cashier's open drawer.
func (h *FailedTransactionHandler) Retry(c *gin.Context) {
	cashier, ok := currentCashier(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	result, err := h.recoveryService.Retry(c.Request.Context(), id, cashier)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Failed transaction resolved", result)
}

func (h *FailedTransactionHandler) Cancel(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	record, err := h.recoveryService.Cancel(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Failed transaction cancelled", record)
}

func (h *FailedTransactionHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.recoveryService.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ImportBackups moves locally saved failures into the database.
func (h *FailedTransactionHandler) ImportBackups(c *gin.Context) {
	imported, err := h.recoveryService.ImportLocalBackups(c.Request.Context())
	if err != nil {
		response.ErrorWithData(c, err, gin.H{"imported": imported})
		return
	}
	response.OK(c, "Local backups imported", gin.H{"imported": imported})
}
