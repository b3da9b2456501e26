package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidOrder            = errors.New("order must contain at least one line with a positive quantity")
	ErrDishNotFound            = errors.New("dish not found")
	ErrIngredientNotFound      = errors.New("ingredient not found")
	ErrOrderNotFound           = errors.New("order not found")
	ErrInvalidQuantity         = errors.New("invalid quantity")
	ErrInvalidStatus           = errors.New("invalid order status")
	ErrInvalidOrderType        = errors.New("invalid order type")
	ErrInvalidCategory         = errors.New("invalid category")
	ErrInvalidID               = errors.New("invalid id")
	ErrNameRequired            = errors.New("name is required")
	ErrInvalidPrice            = errors.New("invalid price")
	ErrInvalidUnit             = errors.New("invalid unit")
	ErrEmptyRecipe             = errors.New("dish recipe must contain at least one ingredient")
	ErrUnitMismatch            = errors.New("conflicting units in stock movements")
	ErrIngredientAlreadyExists = errors.New("ingredient already exists")
	ErrDishAlreadyExists       = errors.New("dish already exists")
)

// Shortage describes one ingredient whose available stock does not cover the
// required quantity.
type Shortage struct {
	IngredientID string
	Required     float64
	Available    float64
	Unit         Unit
}

// InsufficientStockError reports every shortage found during validation,
// ordered by ascending ingredient id so the outcome is deterministic.
type InsufficientStockError struct {
	Shortages []Shortage
}

func (e *InsufficientStockError) Error() string {
	if len(e.Shortages) == 0 {
		return "insufficient stock"
	}
	first := e.Shortages[0]
	msg := fmt.Sprintf("insufficient stock for ingredient %s: required %.2f, available %.2f",
		first.IngredientID, first.Required, first.Available)
	if len(e.Shortages) > 1 {
		rest := make([]string, 0, len(e.Shortages)-1)
		for _, s := range e.Shortages[1:] {
			rest = append(rest, s.IngredientID)
		}
		msg += fmt.Sprintf(" (also short: %s)", strings.Join(rest, ", "))
	}
	return msg
}

// OrderImmutableError is returned when a mutation is attempted on an order
// whose status is terminal.
type OrderImmutableError struct {
	Reference string
	Status    OrderStatus
}

func (e *OrderImmutableError) Error() string {
	return fmt.Sprintf("order %s has status %s and can no longer be modified", e.Reference, e.Status)
}

// PersistenceError wraps a storage-layer fault. The coordinator guarantees
// full rollback before surfacing one, so the failed operation is safe to retry.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether the error is a transient persistence fault
// rather than a business rejection.
func IsRetryable(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// Known reports whether the error is one of the typed business outcomes, as
// opposed to an unexpected storage or infrastructure fault.
func Known(err error) bool {
	for _, sentinel := range []error{
		ErrInvalidOrder, ErrDishNotFound, ErrIngredientNotFound, ErrOrderNotFound,
		ErrInvalidQuantity, ErrInvalidStatus, ErrInvalidOrderType, ErrInvalidID, ErrNameRequired,
		ErrInvalidPrice, ErrInvalidUnit, ErrInvalidCategory, ErrEmptyRecipe, ErrUnitMismatch,
		ErrIngredientAlreadyExists, ErrDishAlreadyExists,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	var insufficient *InsufficientStockError
	var immutable *OrderImmutableError
	return errors.As(err, &insufficient) || errors.As(err, &immutable)
}
