package enum

// PaymentMethod is how a completed transaction was settled
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "Cash"
	PaymentDebt PaymentMethod = "Debt"
)

// DiscountKind selects how a line discount input is interpreted
type DiscountKind string

const (
	DiscountFixed   DiscountKind = "Fixed"
	DiscountPercent DiscountKind = "Percent"
)
