package errors

import "errors"

// IsUserRejected checks if an error indicates the user declined a prompt.
func IsUserRejected(err error) bool {
	if err == nil {
		return false
	}

	var rejectedErr *UserRejectedError
	return errors.As(err, &rejectedErr)
}

// IsProviderUnavailable checks if an error indicates a missing wallet provider.
func IsProviderUnavailable(err error) bool {
	if err == nil {
		return false
	}

	var providerErr *ProviderUnavailableError
	return errors.As(err, &providerErr)
}

// IsGatewayUnavailable checks if an error indicates no active ledger gateway.
func IsGatewayUnavailable(err error) bool {
	if err == nil {
		return false
	}

	var gatewayErr *GatewayUnavailableError
	return errors.As(err, &gatewayErr) || errors.Is(err, ErrNoSession)
}

// IsInvalidAmount checks if an error indicates a rejected price or value.
func IsInvalidAmount(err error) bool {
	if err == nil {
		return false
	}

	var amountErr *InvalidAmountError
	return errors.As(err, &amountErr)
}

// IsInsufficientFunds checks if an error indicates the balance cannot cover
// a payment.
func IsInsufficientFunds(err error) bool {
	if err == nil {
		return false
	}

	var fundsErr *InsufficientFundsError
	return errors.As(err, &fundsErr)
}

// IsTransactionRejected checks if an error indicates a reverted or rejected
// ledger write.
func IsTransactionRejected(err error) bool {
	if err == nil {
		return false
	}

	var txErr *TransactionRejectedError
	return errors.As(err, &txErr)
}

// IsOperationInProgress checks if an error indicates a conflicting in-flight
// operation.
func IsOperationInProgress(err error) bool {
	if err == nil {
		return false
	}

	var inProgressErr *OperationInProgressError
	return errors.As(err, &inProgressErr)
}

// IsStaleSession checks if an error marks a result from a superseded session.
func IsStaleSession(err error) bool {
	if err == nil {
		return false
	}

	var staleErr *StaleSessionError
	return errors.As(err, &staleErr)
}

// IsUpstreamUnavailable checks if an error indicates a storage or ledger
// network failure.
func IsUpstreamUnavailable(err error) bool {
	if err == nil {
		return false
	}

	var upstreamErr *UpstreamUnavailableError
	return errors.As(err, &upstreamErr)
}

// IsNotFound checks if an error indicates a resource was not found.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}

	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr) || errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	if err == nil {
		return false
	}

	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// CodeOf extracts the error code, or CodeInternal for untyped errors.
func CodeOf(err error) string {
	if err == nil {
		return CodeOK
	}
	var typed Error
	if errors.As(err, &typed) {
		return typed.Code()
	}
	return CodeInternal
}
