package errors

import (
	"fmt"
)

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when authentication fails
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrConflict is returned when there's a conflict (duplicate slug/code, idempotency, stale total)
type ErrConflict struct {
	Message string
	Details map[string]interface{}
}

func (e *ErrConflict) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "conflict"
}

// ErrValidation is returned when validation fails
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrUnprocessable is returned when a well-formed request cannot be honoured
// in the current state (expired coupon, pincode not serviceable).
type ErrUnprocessable struct {
	Code    string
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *ErrUnprocessable) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unprocessable"
}

func (e *ErrUnprocessable) Unwrap() error { return e.Err }

// ErrInvalidStateTransition is returned when an invalid state transition is attempted
type ErrInvalidStateTransition struct {
	Field string // "status" or "payment_status"
	From  string
	To    string
}

func (e *ErrInvalidStateTransition) Error() string {
	if e.Field != "" && e.Field != "status" {
		return fmt.Sprintf("invalid %s transition from %s to %s", e.Field, e.From, e.To)
	}
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}
