package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the operator and for recovery decisions.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindDrawer       Kind = "drawer"
	KindInventory    Kind = "inventory"
	KindPersistence  Kind = "persistence"
	KindPrint        Kind = "print"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindInternal     Kind = "internal"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Kind    Kind         `json:"kind"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	Err     error        `json:"-"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches sentinel errors by kind and message so wrapped copies still compare.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// Common errors
var (
	ErrNotFound     = &AppError{Code: http.StatusNotFound, Kind: KindNotFound, Message: "Resource not found"}
	ErrUnauthorized = &AppError{Code: http.StatusUnauthorized, Kind: KindUnauthorized, Message: "Unauthorized"}
	ErrForbidden    = &AppError{Code: http.StatusForbidden, Kind: KindUnauthorized, Message: "Forbidden"}
	ErrInternal     = &AppError{Code: http.StatusInternalServerError, Kind: KindInternal, Message: "Internal server error"}
	ErrInvalidToken = &AppError{Code: http.StatusUnauthorized, Kind: KindUnauthorized, Message: "Invalid token"}

	ErrEmptyCart          = &AppError{Code: http.StatusUnprocessableEntity, Kind: KindValidation, Message: "Cart is empty"}
	ErrNegativeAmount     = &AppError{Code: http.StatusUnprocessableEntity, Kind: KindValidation, Message: "Amount cannot be negative"}
	ErrDebtNeedsCustomer  = &AppError{Code: http.StatusUnprocessableEntity, Kind: KindValidation, Message: "A registered customer is required to add debt"}
	ErrInsufficientPay    = &AppError{Code: http.StatusUnprocessableEntity, Kind: KindValidation, Message: "Paid amount is less than the total"}
	ErrReasonRequired     = &AppError{Code: http.StatusUnprocessableEntity, Kind: KindValidation, Message: "A reason is required"}
	ErrAmountNotPositive  = &AppError{Code: http.StatusUnprocessableEntity, Kind: KindValidation, Message: "Amount must be greater than zero"}
	ErrDrawerNotOpen      = &AppError{Code: http.StatusConflict, Kind: KindDrawer, Message: "Drawer is not open"}
	ErrDrawerAlreadyOpen  = &AppError{Code: http.StatusConflict, Kind: KindDrawer, Message: "Drawer is already open"}
	ErrInsufficientFunds  = &AppError{Code: http.StatusConflict, Kind: KindDrawer, Message: "Insufficient funds in drawer"}
	ErrNotRetryable       = &AppError{Code: http.StatusConflict, Kind: KindConflict, Message: "Failed transaction can no longer be retried"}
	ErrTableSwitchPending = &AppError{Code: http.StatusConflict, Kind: KindConflict, Message: "Table is busy"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    KindInternal,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindValidation,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindValidation,
		Message: message,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Kind:    KindNotFound,
		Message: resource + " not found",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindConflict,
		Message: message,
	}
}

// NewInventoryError reports insufficient stock for the named products.
func NewInventoryError(products []string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindInventory,
		Message: fmt.Sprintf("Insufficient stock for: %v", products),
	}
}

// NewPersistenceError wraps a storage failure.
func NewPersistenceError(op string, err error) *AppError {
	return &AppError{
		Code:    http.StatusServiceUnavailable,
		Kind:    KindPersistence,
		Message: "Failed to " + op,
		Err:     err,
	}
}

// NewPrintError wraps a printer failure. It is a warning, never a sale failure.
func NewPrintError(err error) *AppError {
	return &AppError{
		Code:    http.StatusOK,
		Kind:    KindPrint,
		Message: "Printing failed",
		Err:     err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// KindOf returns the kind of err, or KindInternal when err is not an AppError.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindInternal,
		Message: err.Error(),
	}
}
