package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrAdmissionConflict is returned when the customer already has a non-terminal workflow
	ErrAdmissionConflict = errors.New("customer already has an active workflow")
	// ErrWorkflowNotFound is returned when no workflow exists for an ID
	ErrWorkflowNotFound = errors.New("workflow not found")
	// ErrInvalidTransition is returned when a status change is not allowed from the current state
	ErrInvalidTransition = errors.New("invalid workflow transition")
	// ErrStoreUnavailable is returned when the workflow store cannot be reached
	ErrStoreUnavailable = errors.New("workflow store unavailable")
	// ErrLeaseLost is returned when another instance owns the workflow
	ErrLeaseLost = errors.New("workflow lease held by another instance")
	// ErrInvalidInput is returned for malformed requests
	ErrInvalidInput = errors.New("invalid input")
)

// AdapterError is the failure reported by a step adapter. Only the adapter
// decides whether a failure is retriable.
type AdapterError struct {
	System    string
	Action    string
	Code      string
	Retriable bool
	Err       error
}

// NewRetriableError wraps err as a transient adapter failure
func NewRetriableError(system, action string, err error) *AdapterError {
	return &AdapterError{System: system, Action: action, Retriable: true, Err: err}
}

// NewPermanentError wraps err as a non-retriable adapter failure
func NewPermanentError(system, action, code string, err error) *AdapterError {
	return &AdapterError{System: system, Action: action, Code: code, Err: err}
}

func (e *AdapterError) Error() string {
	msg := "unknown error"
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Code != "" {
		return fmt.Sprintf("%s %s: %s (%s)", e.System, e.Action, msg, e.Code)
	}
	return fmt.Sprintf("%s %s: %s", e.System, e.Action, msg)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// IsRetriable reports whether the adapter classified err as transient. An
// error no adapter classified is never retried.
func IsRetriable(err error) bool {
	var adapterErr *AdapterError
	if errors.As(err, &adapterErr) {
		return adapterErr.Retriable
	}
	return false
}
