package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing team name, negative cost).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrInvalidIdentifier is returned when an identifier string cannot be parsed
// (e.g. a team id that is not a UUID). It is distinct from ErrNotFound: the
// id was never looked up.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// ErrEmptyBilling is returned when a billing period disappeared between
// resolving it and acting on it.
var ErrEmptyBilling = errors.New("billing period no longer exists")

// ErrBillingClosed is returned when a line item change targets a billing
// period whose end_time is already set.
var ErrBillingClosed = errors.New("billing period is closed")

// ErrForbidden is returned by the role gate when the caller lacks the role
// required for the whole operation.
var ErrForbidden = errors.New("forbidden")

// ErrStore matches every *StoreError via errors.Is.
var ErrStore = errors.New("store error")

// ErrDuplicate marks a unique-constraint violation. It always travels inside
// a *StoreError, so callers that only care about kinds still see ErrStore.
var ErrDuplicate = errors.New("duplicate key")

// StoreError wraps any failure of the underlying persistence engine.
// The native error is kept as Err for logs and errors.As, but callers are
// expected to branch on ErrStore only.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: store error: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is reports ErrStore for every StoreError.
func (e *StoreError) Is(target error) bool { return target == ErrStore }

// NewStoreError wraps err as a StoreError. A nil err yields nil.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
