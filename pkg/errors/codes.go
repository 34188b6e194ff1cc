package errors

// Error codes for categorizing platform errors.
// These codes map to HTTP status codes where applicable.
const (
	// CodeOK indicates success (not an error).
	CodeOK = "OK"

	// CodeUserRejected indicates the wallet user declined a prompt.
	CodeUserRejected = "USER_REJECTED"

	// CodeProviderUnavailable indicates the wallet provider is absent or unreachable.
	CodeProviderUnavailable = "PROVIDER_UNAVAILABLE"

	// CodeGatewayUnavailable indicates no active ledger gateway exists for the call.
	CodeGatewayUnavailable = "GATEWAY_UNAVAILABLE"

	// CodeInvalidAmount indicates a price or value outside the accepted range.
	CodeInvalidAmount = "INVALID_AMOUNT"

	// CodeInsufficientFunds indicates the account balance cannot cover a payment.
	CodeInsufficientFunds = "INSUFFICIENT_FUNDS"

	// CodeTransactionRejected indicates the ledger rejected or reverted a write.
	CodeTransactionRejected = "TRANSACTION_REJECTED"

	// CodeOperationInProgress indicates a conflicting operation is already in flight.
	CodeOperationInProgress = "OPERATION_IN_PROGRESS"

	// CodeStaleSession indicates a result was produced under a superseded session.
	CodeStaleSession = "STALE_SESSION"

	// CodeUpstreamUnavailable indicates a storage or ledger network failure.
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"

	// CodeNotFound indicates a resource was not found.
	CodeNotFound = "NOT_FOUND"

	// CodeValidation indicates input validation failed.
	CodeValidation = "VALIDATION_ERROR"

	// CodeInternal indicates internal errors.
	CodeInternal = "INTERNAL"
)
