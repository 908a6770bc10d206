package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Common sentinel errors for quick checks
var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnauthorized is returned when a signer lacks rights for an action.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidInput is returned when input is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTimeout is returned when an operation times out.
	ErrTimeout = errors.New("operation timeout")

	// ErrAborted is returned when a condition reached its aborted state.
	ErrAborted = errors.New("aborted")
)

// Error is the base interface for all typed errors in the library.
// It extends the standard error interface with additional context.
type Error interface {
	error
	// Code returns the error code
	Code() string
	// Message returns the human-readable error message
	Message() string
	// Unwrap returns the underlying cause
	Unwrap() error
}

// BaseError provides a foundation for all typed errors.
type BaseError struct {
	code    string
	message string
	cause   error
	stack   []uintptr
}

// Error implements the error interface.
func (e *BaseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Code returns the error code.
func (e *BaseError) Code() string {
	return e.code
}

// Message returns the error message.
func (e *BaseError) Message() string {
	return e.message
}

// Unwrap returns the underlying cause.
func (e *BaseError) Unwrap() error {
	return e.cause
}

// Stack returns the captured stack trace.
func (e *BaseError) Stack() []uintptr {
	return e.stack
}

// captureStack captures the current stack trace.
func captureStack(skip int) []uintptr {
	const maxDepth = 32
	stack := make([]uintptr, maxDepth)
	n := runtime.Callers(skip+2, stack)
	return stack[:n]
}

// StackTrace returns a formatted stack trace string.
func (e *BaseError) StackTrace() string {
	if len(e.stack) == 0 {
		return ""
	}

	var buf strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			fmt.Fprintf(&buf, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		}
		if !more {
			break
		}
	}
	return buf.String()
}

// ValidationError represents an input validation error, caught before any
// network call is made.
type ValidationError struct {
	*BaseError
	Field string
	Value interface{}
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		BaseError: &BaseError{
			code:    CodeValidation,
			message: message,
			stack:   captureStack(1),
		},
		Field: field,
		Value: value,
	}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.message)
	}
	return fmt.Sprintf("validation error: %s", e.message)
}

// TransportError represents a network or RPC failure. It is surfaced to the
// caller for their own retry policy and never retried by this layer.
type TransportError struct {
	*BaseError
	Endpoint string
}

// NewTransportError creates a new transport error.
func NewTransportError(endpoint, message string, cause error) *TransportError {
	if message == "" {
		message = "transport failure"
	}
	return &TransportError{
		BaseError: &BaseError{
			code:    CodeTransport,
			message: message,
			cause:   cause,
			stack:   captureStack(1),
		},
		Endpoint: endpoint,
	}
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("transport error (%s): %s", e.Endpoint, e.BaseError.Error())
	}
	return fmt.Sprintf("transport error: %s", e.BaseError.Error())
}

// RemoteRejectionError represents an explicit rejection by the execution
// environment or a remote service: dependency not yet satisfied, double
// fulfillment, insufficient funds, unauthorized signer.
type RemoteRejectionError struct {
	*BaseError
	Service   string
	Operation string
	Detail    string
}

// NewRemoteRejectionError creates a new remote rejection error.
func NewRemoteRejectionError(service, operation, detail string) *RemoteRejectionError {
	message := fmt.Sprintf("%s rejected %s", service, operation)
	return &RemoteRejectionError{
		BaseError: &BaseError{
			code:    CodeRemoteRejection,
			message: message,
			stack:   captureStack(1),
		},
		Service:   service,
		Operation: operation,
		Detail:    detail,
	}
}

// Error implements the error interface.
func (e *RemoteRejectionError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.message, e.Detail)
	}
	return e.message
}

// ProtocolMismatchError represents a client-computed identifier diverging from
// the value the remote side expects. Treated as a fatal bug: no retry with the
// same inputs can succeed.
type ProtocolMismatchError struct {
	*BaseError
	Expected string
	Actual   string
}

// NewProtocolMismatchError creates a new protocol mismatch error.
func NewProtocolMismatchError(message, expected, actual string) *ProtocolMismatchError {
	if message == "" {
		message = "client/chain identifier mismatch"
	}
	return &ProtocolMismatchError{
		BaseError: &BaseError{
			code:    CodeProtocolMismatch,
			message: message,
			stack:   captureStack(1),
		},
		Expected: expected,
		Actual:   actual,
	}
}

// Error implements the error interface.
func (e *ProtocolMismatchError) Error() string {
	return fmt.Sprintf("protocol mismatch: %s (expected %s, got %s)", e.message, e.Expected, e.Actual)
}

// NotFoundError represents a resource not found error.
type NotFoundError struct {
	*BaseError
	Resource string
	ID       string
}

// NewNotFoundError creates a new not found error.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{
		BaseError: &BaseError{
			code:    CodeNotFound,
			message: fmt.Sprintf("%s not found", resource),
			stack:   captureStack(1),
		},
		Resource: resource,
		ID:       id,
	}
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with ID '%s' not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// AlreadyExistsError represents a resource conflict, e.g. submitting an
// agreement with an ID that was used before.
type AlreadyExistsError struct {
	*BaseError
	Resource string
	ID       string
}

// NewAlreadyExistsError creates a new conflict error.
func NewAlreadyExistsError(resource, id string) *AlreadyExistsError {
	return &AlreadyExistsError{
		BaseError: &BaseError{
			code:    CodeAlreadyExists,
			message: fmt.Sprintf("%s already exists", resource),
			stack:   captureStack(1),
		},
		Resource: resource,
		ID:       id,
	}
}

// Error implements the error interface.
func (e *AlreadyExistsError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with ID '%s' already exists", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s already exists", e.Resource)
}

// UnauthorizedError represents a signer lacking rights for an action.
type UnauthorizedError struct {
	*BaseError
	Signer string
	Action string
}

// NewUnauthorizedError creates a new unauthorized error.
func NewUnauthorizedError(signer, action string) *UnauthorizedError {
	message := "unauthorized"
	if action != "" {
		message = fmt.Sprintf("unauthorized: cannot %s", action)
	}
	return &UnauthorizedError{
		BaseError: &BaseError{
			code:    CodeUnauthorized,
			message: message,
			stack:   captureStack(1),
		},
		Signer: signer,
		Action: action,
	}
}

// InsufficientFundsError represents a balance or allowance too low for the
// requested transfer.
type InsufficientFundsError struct {
	*BaseError
	Account  string
	Required uint64
	Balance  uint64
}

// NewInsufficientFundsError creates a new insufficient funds error.
func NewInsufficientFundsError(account string, required, balance uint64) *InsufficientFundsError {
	return &InsufficientFundsError{
		BaseError: &BaseError{
			code:    CodeInsufficientFunds,
			message: fmt.Sprintf("insufficient funds: required %d, balance %d", required, balance),
			stack:   captureStack(1),
		},
		Account:  account,
		Required: required,
		Balance:  balance,
	}
}

// TimeoutError represents a caller-imposed deadline elapsing.
type TimeoutError struct {
	*BaseError
	Operation string
	Duration  string
}

// NewTimeoutError creates a new timeout error.
func NewTimeoutError(operation, duration string) *TimeoutError {
	message := "operation timeout"
	if operation != "" {
		message = fmt.Sprintf("%s timeout", operation)
	}
	return &TimeoutError{
		BaseError: &BaseError{
			code:    CodeTimeout,
			message: message,
			stack:   captureStack(1),
		},
		Operation: operation,
		Duration:  duration,
	}
}

// AbortedError represents a condition that reached its aborted state before
// the flow could complete.
type AbortedError struct {
	*BaseError
	AgreementID string
	Condition   string
}

// NewAbortedError creates a new aborted error.
func NewAbortedError(agreementID, condition string) *AbortedError {
	return &AbortedError{
		BaseError: &BaseError{
			code:    CodeAborted,
			message: fmt.Sprintf("condition %s aborted", condition),
			stack:   captureStack(1),
		},
		AgreementID: agreementID,
		Condition:   condition,
	}
}

// Wrap wraps an error with additional context.
// If the error is already one of our typed errors, it preserves the code and
// adds to the cause chain. Otherwise it creates an internal error.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	if e, ok := err.(Error); ok {
		return &BaseError{
			code:    e.Code(),
			message: message,
			cause:   err,
			stack:   captureStack(1),
		}
	}

	return &BaseError{
		code:    CodeInternal,
		message: message,
		cause:   err,
		stack:   captureStack(1),
	}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// New creates a new error with a message.
func New(message string) error {
	return &BaseError{
		code:    CodeInternal,
		message: message,
		stack:   captureStack(1),
	}
}

// Newf creates a new error with a formatted message.
func Newf(format string, args ...interface{}) error {
	return New(fmt.Sprintf(format, args...))
}
