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

	// ErrNoSession is returned when an operation requires a connected session.
	ErrNoSession = errors.New("no active session")

	// ErrInvalidInput is returned when request input is invalid.
	ErrInvalidInput = errors.New("invalid input")
)

// Error is the base interface for all typed errors in the platform.
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

// UserRejectedError indicates the wallet user declined a connection or
// signature prompt.
type UserRejectedError struct {
	*BaseError
	Action string
}

// NewUserRejectedError creates a new user rejected error.
func NewUserRejectedError(action string) *UserRejectedError {
	message := "user rejected the request"
	if action != "" {
		message = fmt.Sprintf("user rejected %s", action)
	}
	return &UserRejectedError{
		BaseError: &BaseError{
			code:    CodeUserRejected,
			message: message,
			stack:   captureStack(1),
		},
		Action: action,
	}
}

// ProviderUnavailableError indicates the named wallet provider is not
// installed or not reachable.
type ProviderUnavailableError struct {
	*BaseError
	Provider string
}

// NewProviderUnavailableError creates a new provider unavailable error.
func NewProviderUnavailableError(provider string, cause error) *ProviderUnavailableError {
	message := "wallet provider unavailable"
	if provider != "" {
		message = fmt.Sprintf("wallet provider %s unavailable", provider)
	}
	return &ProviderUnavailableError{
		BaseError: &BaseError{
			code:    CodeProviderUnavailable,
			message: message,
			cause:   cause,
			stack:   captureStack(1),
		},
		Provider: provider,
	}
}

// GatewayUnavailableError indicates no active ledger gateway exists,
// usually because the wallet is disconnected or of an unsupported kind.
type GatewayUnavailableError struct {
	*BaseError
	Reason string
}

// NewGatewayUnavailableError creates a new gateway unavailable error.
func NewGatewayUnavailableError(reason string) *GatewayUnavailableError {
	message := "ledger gateway unavailable"
	if reason != "" {
		message = fmt.Sprintf("ledger gateway unavailable: %s", reason)
	}
	return &GatewayUnavailableError{
		BaseError: &BaseError{
			code:    CodeGatewayUnavailable,
			message: message,
			stack:   captureStack(1),
		},
		Reason: reason,
	}
}

// InvalidAmountError indicates a price or payment value outside the
// accepted range.
type InvalidAmountError struct {
	*BaseError
	Amount string
}

// NewInvalidAmountError creates a new invalid amount error.
func NewInvalidAmountError(amount string) *InvalidAmountError {
	message := "invalid amount"
	if amount != "" {
		message = fmt.Sprintf("invalid amount: %s", amount)
	}
	return &InvalidAmountError{
		BaseError: &BaseError{
			code:    CodeInvalidAmount,
			message: message,
			stack:   captureStack(1),
		},
		Amount: amount,
	}
}

// InsufficientFundsError indicates the account balance cannot cover a
// payment plus fees.
type InsufficientFundsError struct {
	*BaseError
	Account string
}

// NewInsufficientFundsError creates a new insufficient funds error.
func NewInsufficientFundsError(account string, cause error) *InsufficientFundsError {
	return &InsufficientFundsError{
		BaseError: &BaseError{
			code:    CodeInsufficientFunds,
			message: "insufficient funds",
			cause:   cause,
			stack:   captureStack(1),
		},
		Account: account,
	}
}

// TransactionRejectedError indicates the ledger rejected or reverted a
// write call.
type TransactionRejectedError struct {
	*BaseError
	Method string
}

// NewTransactionRejectedError creates a new transaction rejected error.
func NewTransactionRejectedError(method string, cause error) *TransactionRejectedError {
	message := "transaction rejected"
	if method != "" {
		message = fmt.Sprintf("transaction rejected: %s", method)
	}
	return &TransactionRejectedError{
		BaseError: &BaseError{
			code:    CodeTransactionRejected,
			message: message,
			cause:   cause,
			stack:   captureStack(1),
		},
		Method: method,
	}
}

// OperationInProgressError indicates a conflicting operation is already in
// flight for the same resource.
type OperationInProgressError struct {
	*BaseError
	Resource string
}

// NewOperationInProgressError creates a new operation in progress error.
func NewOperationInProgressError(resource string) *OperationInProgressError {
	message := "operation already in progress"
	if resource != "" {
		message = fmt.Sprintf("operation already in progress for %s", resource)
	}
	return &OperationInProgressError{
		BaseError: &BaseError{
			code:    CodeOperationInProgress,
			message: message,
			stack:   captureStack(1),
		},
		Resource: resource,
	}
}

// StaleSessionError indicates a result was produced under a session that
// has since been replaced. Stale results are dropped, not surfaced to users.
type StaleSessionError struct {
	*BaseError
	SessionID string
}

// NewStaleSessionError creates a new stale session error.
func NewStaleSessionError(sessionID string) *StaleSessionError {
	return &StaleSessionError{
		BaseError: &BaseError{
			code:    CodeStaleSession,
			message: "result discarded: session superseded",
			stack:   captureStack(1),
		},
		SessionID: sessionID,
	}
}

// UpstreamUnavailableError indicates a storage or ledger network failure.
type UpstreamUnavailableError struct {
	*BaseError
	Service string
}

// NewUpstreamUnavailableError creates a new upstream unavailable error.
func NewUpstreamUnavailableError(service string, cause error) *UpstreamUnavailableError {
	message := "upstream unavailable"
	if service != "" {
		message = fmt.Sprintf("%s unavailable", service)
	}
	return &UpstreamUnavailableError{
		BaseError: &BaseError{
			code:    CodeUpstreamUnavailable,
			message: message,
			cause:   cause,
			stack:   captureStack(1),
		},
		Service: service,
	}
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

// ValidationError represents an input validation error.
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

// Wrap wraps an error with additional context. If the error is already one
// of our typed errors the code is preserved; otherwise an internal error is
// created.
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
