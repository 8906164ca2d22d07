package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrNoSession means the user is not signed in.
	ErrNoSession = errors.New("no active session: please log in")
	// ErrBusy is returned when a mutating request for the same entity is still in flight.
	ErrBusy = errors.New("request already in progress")
	// ErrNotFound is returned for unknown local entities (products, shapes).
	ErrNotFound = errors.New("not found")
	// ErrStale marks a response superseded by a newer request for the same resource.
	ErrStale = errors.New("stale response discarded")
)

// ErrorKind is the user-facing classification of an error.
type ErrorKind string

const (
	KindNone           ErrorKind = ""
	KindNoSession      ErrorKind = "no-session"
	KindNetwork        ErrorKind = "network"
	KindBackend        ErrorKind = "backend"
	KindValidation     ErrorKind = "validation"
	KindReconciliation ErrorKind = "reconciliation"
	KindMalformed      ErrorKind = "malformed"
	KindBusy           ErrorKind = "busy"
	KindNotFound       ErrorKind = "not-found"
	KindStale          ErrorKind = "stale"
	KindUnknown        ErrorKind = "unknown"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}

// NetworkError wraps a transport failure (timeout, refused connection, open breaker).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError is a missing or invalid user input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ReconciliationError means the payment went through but the order was not recorded.
// The customer has been charged; it must never be shown as a generic failure.
type ReconciliationError struct {
	Reference string
	Err       error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("payment %s succeeded but the order could not be recorded: %v", e.Reference, e.Err)
}

func (e *ReconciliationError) Unwrap() error { return e.Err }

// ParseError is a backend payload the normalization boundary could not accept.
type ParseError struct {
	Kind   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Kind, e.Reason)
}

// Classify maps err onto the error taxonomy.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var (
		recErr   *ReconciliationError
		valErr   *ValidationError
		apiErr   *APIError
		netErr   *NetworkError
		parseErr *ParseError
		opErr    net.Error
	)
	switch {
	case errors.As(err, &recErr):
		return KindReconciliation
	case errors.Is(err, ErrNoSession):
		return KindNoSession
	case errors.As(err, &valErr):
		return KindValidation
	case errors.Is(err, ErrBusy):
		return KindBusy
	case errors.Is(err, ErrStale):
		return KindStale
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.As(err, &apiErr):
		if apiErr.Status == 401 {
			return KindNoSession
		}
		return KindBackend
	case errors.As(err, &parseErr):
		return KindMalformed
	case errors.As(err, &netErr), errors.As(err, &opErr),
		errors.Is(err, context.DeadlineExceeded):
		return KindNetwork
	}
	return KindUnknown
}

// IsNetwork reports whether err is a transport-level failure.
func IsNetwork(err error) bool {
	return Classify(err) == KindNetwork
}
