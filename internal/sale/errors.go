package sale

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a sale does not exist within the tenant.
	ErrNotFound = errors.New("sale not found")

	// ErrNotCancellable is returned when a cancellation targets a sale
	// that is not in the completed state.
	ErrNotCancellable = errors.New("sale is not cancellable")

	// ErrCancelWindowClosed is returned when the configured time limit
	// since creation has passed.
	ErrCancelWindowClosed = errors.New("cancellation window has closed")
)

// ValidationError reports malformed or incomplete input. It is always a
// caller error; no state has been created when it is returned.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

func invalidf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// TenantViolationError reports a reference that crosses tenant
// boundaries. Never corrected silently, always fatal to the request.
type TenantViolationError struct {
	Resource string
	ID       uuid.UUID
}

func (e *TenantViolationError) Error() string {
	return fmt.Sprintf("%s %s does not belong to the current tenant", e.Resource, e.ID)
}

// InsufficientPaymentError reports that the net payment total does not
// cover the computed grand total. Shortfall lets the caller retry with
// corrected payments.
type InsufficientPaymentError struct {
	GrandTotal decimal.Decimal
	NetTotal   decimal.Decimal
	Shortfall  decimal.Decimal
}

func (e *InsufficientPaymentError) Error() string {
	return fmt.Sprintf("payments cover %s of %s, short by %s",
		e.NetTotal, e.GrandTotal, e.Shortfall)
}

// AllocationError wraps a failure to allocate a transaction number. The
// whole operation is safe to retry.
type AllocationError struct {
	Err error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("allocating transaction number: %v", e.Err)
}

func (e *AllocationError) Unwrap() error { return e.Err }

// PersistenceError wraps a failed atomic write. No partial state
// survives, so the whole operation is safe to retry.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persisting sale: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
