package request

import "github.com/shopspring/decimal"

// OpenDrawerRequest opens the cashier's drawer.
type OpenDrawerRequest struct {
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Notes          string          `json:"notes" binding:"max=500"`
}

// CashMoveRequest is a manual cash in or cash out.
type CashMoveRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason" binding:"required,max=255"`
}

// CloseDrawerRequest closes a drawer with the counted balance.
type CloseDrawerRequest struct {
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	Notes          string          `json:"notes" binding:"max=500"`
}
