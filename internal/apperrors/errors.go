// Package apperrors defines the error taxonomy shared by every engine
// operation. Callers classify failures with errors.As.
package apperrors

import "fmt"

// ValidationError: missing or malformed required fields.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validation(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError: an id reference that resolves to nothing.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// InvalidOperationError: the operation would violate a quantity or status
// invariant (negative stock, unreachable status transition).
type InvalidOperationError struct {
	Msg string
}

func (e *InvalidOperationError) Error() string { return e.Msg }

func InvalidOperation(format string, args ...interface{}) error {
	return &InvalidOperationError{Msg: fmt.Sprintf(format, args...)}
}

// InsufficientStockError: a reservation exceeding available quantity.
type InsufficientStockError struct {
	ItemID    string
	Requested float64
	Available float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %s: requested %.2f, available %.2f",
		e.ItemID, e.Requested, e.Available)
}

func InsufficientStock(itemID string, requested, available float64) error {
	return &InsufficientStockError{ItemID: itemID, Requested: requested, Available: available}
}

// ConflictError: duplicate unique key.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

func Conflict(format string, args ...interface{}) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}
