package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/tablepos/internal/application/service"
	"github.com/sangkips/tablepos/internal/presentation/http/dto/request"
	"github.com/sangkips/tablepos/internal/presentation/http/dto/response"
)

// TableHandler serves the table overview.
type TableHandler struct {
	tableService *service.TableService
}

func NewTableHandler(tableService *service.TableService) *TableHandler {
	return &TableHandler{tableService: tableService}
}

// List returns every table with its current sale.
func (h *TableHandler) List(c *gin.Context) {
	tables, err := h.tableService.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Tables retrieved successfully", tables)
}

// Statistics returns table counts per status.
func (h *TableHandler) Statistics(c *gin.Context) {
	stats, err := h.tableService.Statistics(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Table statistics retrieved successfully", stats)
}

// SetStatus reserves a table, takes it out of service, or frees it.
func (h *TableHandler) SetStatus(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req request.TableStatusRequest
	if !bind(c, &req) {
		return
	}
	if err := h.tableService.SetManualStatus(c.Request.Context(), id, req.Status); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Table status updated", gin.H{"id": id, "status": req.Status})
}
