package entity

// ReceiptHeader holds the store/business header printed at the top of a receipt.
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	TaxID     string `json:"tax_id,omitempty"`
}

// ReceiptItem represents a single line item on a receipt.
type ReceiptItem struct {
	Name      string `json:"name"`
	Quantity  string `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Discount  string `json:"discount,omitempty"`
	Total     string `json:"total"`
}

// Receipt is a value object representing a printable receipt.
// It is composed from transaction data at print time and never stored.
type Receipt struct {
	Header         ReceiptHeader `json:"header"`
	InvoiceNo      string        `json:"invoice_no"`
	Date           string        `json:"date"`
	Cashier        string        `json:"cashier,omitempty"`
	Customer       string        `json:"customer,omitempty"`
	PaymentType    string        `json:"payment_type,omitempty"`
	Items          []ReceiptItem `json:"items"`
	Total          string        `json:"total"`
	Paid           string        `json:"paid"`
	Change         string        `json:"change,omitempty"`
	Debt           string        `json:"debt,omitempty"`
	SecondaryTotal string        `json:"secondary_total,omitempty"` // total converted at the configured exchange rate
}

// DrawerReport is the printable end-of-shift summary of a drawer.
type DrawerReport struct {
	Header         ReceiptHeader `json:"header"`
	Cashier        string        `json:"cashier"`
	Status         string        `json:"status"`
	OpenedAt       string        `json:"opened_at"`
	ClosedAt       string        `json:"closed_at,omitempty"`
	OpeningBalance string        `json:"opening_balance"`
	CashIn         string        `json:"cash_in"`
	CashOut        string        `json:"cash_out"`
	CurrentBalance string        `json:"current_balance"`
	ClosingBalance string        `json:"closing_balance,omitempty"`
	Difference     string        `json:"difference,omitempty"`
	Movements      int           `json:"movements"`
}
