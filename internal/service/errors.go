package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Typed failure taxonomy for the sale engine. Every validation or invariant
// failure aborts the in-progress transaction and surfaces as one of these,
// carrying enough context for the API layer to render a precise message.

// InvalidRequestError covers malformed or missing fields.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string { return "invalid request: " + e.Reason }

// NotFoundError covers absent terminals, products, customers and transactions.
type NotFoundError struct {
	Kind string // "terminal" | "product" | "customer" | "transaction"
	ID   string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %s not found", e.Kind, e.ID) }

// ProductInactiveError is returned when a cart references a disabled product.
type ProductInactiveError struct {
	ProductID uuid.UUID
	Name      string
}

func (e *ProductInactiveError) Error() string {
	return fmt.Sprintf("product %q is inactive and cannot be sold", e.Name)
}

// InsufficientStockError reports which product lacked stock, and by how much.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: %d available, %d requested",
		e.Name, e.Available, e.Requested)
}

// AmountMismatchError is returned when tender amounts do not cover the
// computed total within one minor currency unit.
type AmountMismatchError struct {
	Expected decimal.Decimal
	Actual   decimal.Decimal
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("tendered amount %s does not match total %s",
		e.Actual.StringFixed(2), e.Expected.StringFixed(2))
}

// InvalidStateTransitionError rejects any lifecycle move outside
// pending → completed → voided.
type InvalidStateTransitionError struct {
	From string
	To   string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("cannot transition sale from %q to %q", e.From, e.To)
}

// PaymentAuthError is returned when the external gateway declines a tender
// before reconciliation. The gateway result is treated as opaque.
type PaymentAuthError struct {
	Method string
	Cause  error
}

func (e *PaymentAuthError) Error() string {
	return fmt.Sprintf("payment authorization failed for %s tender: %v", e.Method, e.Cause)
}

func (e *PaymentAuthError) Unwrap() error { return e.Cause }

// StorageError marks a transient storage failure. The orchestrator retries a
// bounded number of times, but only when the unit of work has not committed.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string { return "storage failure: " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }

// isTransient reports whether err looks like a serialization or deadlock
// failure that is safe to retry after a full rollback.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	// SQLSTATE 40001 (serialization_failure), 40P01 (deadlock_detected)
	return strings.Contains(msg, "40001") ||
		strings.Contains(msg, "40P01") ||
		strings.Contains(msg, "deadlock detected")
}
