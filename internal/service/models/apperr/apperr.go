package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a malformed request. Wrapped by *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrProductsUnavailable is returned when a requested product does not exist
	// or is currently locked by a concurrent order.
	ErrProductsUnavailable = errors.New("products unavailable or locked")

	// ErrInsufficientStock is matched by *InsufficientStockError via errors.Is.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrTransactionConflict is returned when the store aborted the transaction
	// (serialization failure, deadlock, lock or statement timeout).
	ErrTransactionConflict = errors.New("transaction conflict")

	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrAlreadyExists = errors.New("already exists")
)

// ValidationError describes which field of a request is invalid.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
	}

	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// InsufficientStockError names the product whose locked stock cannot cover
// the requested quantity.
type InsufficientStockError struct {
	ProductID string `json:"productId"`
	Requested int64  `json:"requested"`
	Available int64  `json:"available"`
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf(
		"insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available,
	)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}
