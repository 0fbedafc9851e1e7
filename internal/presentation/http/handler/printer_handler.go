package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/tablepos/internal/application/service"
	"github.com/sangkips/tablepos/internal/presentation/http/dto/response"
)

// PrinterHandler handles printer-related HTTP requests.
type PrinterHandler struct {
	printerService *service.PrinterService
}

// NewPrinterHandler creates a new printer handler.
func NewPrinterHandler(printerService *service.PrinterService) *PrinterHandler {
	return &PrinterHandler{printerService: printerService}
}

// GetStatus returns the current printer connection status.
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	status := h.printerService.GetStatus()
	response.OK(c, "Printer status retrieved", status)
}

// Status returns the printer status for callers outside a request.
func (h *PrinterHandler) Status() *service.PrinterStatus {
	return h.printerService.GetStatus()
}

// TestPrint sends a test page to the printer.
func (h *PrinterHandler) TestPrint(c *gin.Context) {
	receipt, outcome := h.printerService.TestPrint()
	response.OK(c, outcome, gin.H{
		"receipt": receipt,
	})
}
