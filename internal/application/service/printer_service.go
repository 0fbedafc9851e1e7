package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/sangkips/tablepos/pkg/apperror"
	"github.com/sangkips/tablepos/pkg/printer"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02 15:04"

// Print outcome texts.
const (
	PrintOK            = "Printed"
	PrintNotConfigured = "No printer configured"
)

// PrinterOptions configures receipt layout and drawer kicking.
type PrinterOptions struct {
	Type       string
	CharWidth  int
	KickOnSale bool
	Header     entity.ReceiptHeader
}

// PrinterService handles receipt formatting and thermal printing.
type PrinterService struct {
	printer printer.Printer
	opts    PrinterOptions
	log     *zap.Logger
}

// NewPrinterService creates a new printer service.
func NewPrinterService(p printer.Printer, opts PrinterOptions, log *zap.Logger) *PrinterService {
	if opts.CharWidth <= 0 {
		opts.CharWidth = printer.Width58mm
	}
	return &PrinterService{printer: p, opts: opts, log: log.Named("printer")}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.configured(),
		Connected:  s.printer.IsConnected(),
		Type:       s.opts.Type,
	}
}

// PrintReceipt prints the sale receipt. lines supply product names; when
// empty the transaction's stored details are used. Failures are reported in
// the returned text and never unwind the sale.
func (s *PrinterService) PrintReceipt(ctx context.Context, tx *entity.Transaction, lines []entity.LineItem, customerID *uuid.UUID, exchangeRate decimal.Decimal) string {
	receipt := BuildReceipt(s.opts.Header, tx, lines, exchangeRate)
	data := FormatReceipt(receipt, s.opts.CharWidth, s.opts.KickOnSale && tx.CashReceived().IsPositive())

	fields := []zap.Field{zap.Uint("transaction_id", tx.ID)}
	if customerID != nil {
		fields = append(fields, zap.String("customer_id", customerID.String()))
	}
	return s.send(data, "receipt", fields...)
}

// PrintDrawerReport prints the drawer summary and returns the outcome text.
func (s *PrinterService) PrintDrawerReport(ctx context.Context, drawer *entity.Drawer, movements []entity.DrawerMovement) string {
	report := BuildDrawerReport(s.opts.Header, drawer, len(movements))
	return s.send(FormatDrawerReport(report, s.opts.CharWidth), "drawer report", zap.String("drawer_id", drawer.ID.String()))
}

// TestPrint sends a sample receipt.
func (s *PrinterService) TestPrint() (*entity.Receipt, string) {
	receipt := &entity.Receipt{
		Header:    entity.ReceiptHeader{StoreName: "PRINTER TEST"},
		InvoiceNo: "TEST-001",
		Date:      "Test Date",
		Cashier:   "System",
		Items: []entity.ReceiptItem{
			{Name: "Test Item 1", Quantity: "1", UnitPrice: "10.00", Total: "10.00"},
			{Name: "Test Item 2", Quantity: "2", UnitPrice: "5.00", Total: "10.00"},
		},
		Total: "20.00",
		Paid:  "20.00",
	}
	return receipt, s.send(FormatReceipt(receipt, s.opts.CharWidth, false), "test page")
}

func (s *PrinterService) configured() bool {
	return s.opts.Type != "none" && s.opts.Type != ""
}

func (s *PrinterService) send(data []byte, what string, fields ...zap.Field) string {
	if !s.configured() {
		return PrintNotConfigured
	}
	if err := s.printer.Print(data); err != nil {
		perr := apperror.NewPrintError(err)
		s.log.Warn("print failed", append(fields, zap.String("document", what), zap.Error(err))...)
		return perr.Error()
	}
	return PrintOK
}

// BuildReceipt composes a printable receipt from a committed transaction.
func BuildReceipt(header entity.ReceiptHeader, tx *entity.Transaction, lines []entity.LineItem, exchangeRate decimal.Decimal) *entity.Receipt {
	r := &entity.Receipt{
		Header:      header,
		InvoiceNo:   "INV-" + strconv.FormatUint(uint64(tx.ID), 10),
		Date:        tx.TransactionDate.Format(dateLayout),
		Cashier:     tx.CashierName,
		Customer:    tx.CustomerName,
		PaymentType: string(tx.PaymentMethod),
		Total:       money(tx.TotalAmount),
		Paid:        money(tx.PaidAmount),
	}
	if tx.ChangeDue.IsPositive() {
		r.Change = money(tx.ChangeDue)
	}
	if tx.AmountToDebt.IsPositive() {
		r.Debt = money(tx.AmountToDebt)
	}
	if exchangeRate.IsPositive() {
		r.SecondaryTotal = money(tx.TotalAmount.Mul(exchangeRate))
	}

	details := tx.Details
	if len(lines) > 0 {
		details = entity.DetailsFromLines(lines)
	}
	for _, d := range details {
		name := d.ProductName
		if name == "" {
			name = "Product"
		}
		if d.IsBoxUnit {
			name += " (box)"
		}
		item := entity.ReceiptItem{
			Name:      name,
			Quantity:  d.Quantity.String(),
			UnitPrice: money(d.UnitPrice),
			Total:     money(d.Total),
		}
		if d.DiscountAmount.IsPositive() {
			item.Discount = money(d.DiscountAmount)
		}
		r.Items = append(r.Items, item)
	}
	return r
}

// BuildDrawerReport composes the printable drawer summary.
func BuildDrawerReport(header entity.ReceiptHeader, d *entity.Drawer, movements int) *entity.DrawerReport {
	r := &entity.DrawerReport{
		Header:         header,
		Cashier:        d.CashierName,
		Status:         d.Status.String(),
		OpenedAt:       d.OpenedAt.Format(dateLayout),
		OpeningBalance: money(d.OpeningBalance),
		CashIn:         money(d.CashIn),
		CashOut:        money(d.CashOut),
		CurrentBalance: money(d.CurrentBalance),
		Movements:      movements,
	}
	if d.ClosedAt != nil {
		r.ClosedAt = d.ClosedAt.Format(dateLayout)
	}
	if d.ClosingBalance != nil {
		r.ClosingBalance = money(*d.ClosingBalance)
		r.Difference = money(d.NetCashFlow)
	}
	return r
}

// FormatReceipt converts a Receipt into ESC/POS bytes.
func FormatReceipt(r *entity.Receipt, width int, kickDrawer bool) []byte {
	doc := printer.NewDocument(width)
	header(doc, r.Header)

	doc.KeyValue("Invoice:", r.InvoiceNo).
		KeyValue("Date:", r.Date)
	if r.Cashier != "" {
		doc.KeyValue("Cashier:", r.Cashier)
	}
	if r.Customer != "" {
		doc.KeyValue("Customer:", r.Customer)
	}
	if r.PaymentType != "" {
		doc.KeyValue("Payment:", r.PaymentType)
	}
	doc.Separator('-')

	for _, item := range r.Items {
		doc.ItemLine(item.Quantity, item.Name, item.Total)
		if item.Quantity != "1" {
			doc.TextF("  @ %s each", item.UnitPrice)
		}
		if item.Discount != "" {
			doc.TextF("  discount -%s", item.Discount)
		}
	}
	doc.Separator('-')

	doc.SetBold(true).
		KeyValue("TOTAL:", r.Total).
		SetBold(false)
	if r.SecondaryTotal != "" {
		doc.KeyValue("Total (alt):", r.SecondaryTotal)
	}
	doc.KeyValue("Paid:", r.Paid)
	if r.Change != "" {
		doc.KeyValue("Change:", r.Change)
	}
	if r.Debt != "" {
		doc.KeyValue("To debt:", r.Debt)
	}
	doc.Separator('-')

	doc.SetAlign(printer.AlignCenter).
		LineFeed().
		Text("Thank you for your business!").
		LineFeed().
		SetAlign(printer.AlignLeft)

	doc.FeedLines(3).
		PartialCut()
	if kickDrawer {
		doc.KickDrawer()
	}
	return doc.Bytes()
}

// FormatDrawerReport converts a DrawerReport into ESC/POS bytes.
func FormatDrawerReport(r *entity.DrawerReport, width int) []byte {
	doc := printer.NewDocument(width)
	header(doc, r.Header)

	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		Text("DRAWER REPORT").
		SetBold(false).
		SetAlign(printer.AlignLeft)

	doc.KeyValue("Cashier:", r.Cashier).
		KeyValue("Status:", r.Status).
		KeyValue("Opened:", r.OpenedAt)
	if r.ClosedAt != "" {
		doc.KeyValue("Closed:", r.ClosedAt)
	}
	doc.Separator('-')

	doc.KeyValue("Opening:", r.OpeningBalance).
		KeyValue("Cash in:", r.CashIn).
		KeyValue("Cash out:", r.CashOut).
		SetBold(true).
		KeyValue("Expected:", r.CurrentBalance).
		SetBold(false)
	if r.ClosingBalance != "" {
		doc.KeyValue("Counted:", r.ClosingBalance).
			KeyValue("Difference:", r.Difference)
	}
	doc.KeyValue("Movements:", fmt.Sprint(r.Movements))

	doc.FeedLines(3).
		PartialCut()
	return doc.Bytes()
}

func header(doc *printer.Document, h entity.ReceiptHeader) {
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(h.StoreName).
		SetFontSize(printer.FontNormal).
		SetBold(false)
	if h.Address != "" {
		doc.Text(h.Address)
	}
	if h.Phone != "" {
		doc.Text(h.Phone)
	}
	if h.TaxID != "" {
		doc.TextF("Tax ID: %s", h.TaxID)
	}
	doc.SetAlign(printer.AlignLeft).
		Separator('-')
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
