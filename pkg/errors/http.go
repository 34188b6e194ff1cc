package errors

import (
	"encoding/json"
	"errors"
	"net/http"
)

// HTTPError represents an HTTP error response body.
type HTTPError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status code for an error.
// It maps taxonomy codes to appropriate HTTP status codes.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var customErr Error
	if errors.As(err, &customErr) {
		return codeToHTTPStatus(customErr.Code())
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNoSession):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

func codeToHTTPStatus(code string) int {
	switch code {
	case CodeOK:
		return http.StatusOK
	case CodeUserRejected:
		return http.StatusForbidden
	case CodeProviderUnavailable, CodeGatewayUnavailable, CodeUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case CodeInvalidAmount, CodeValidation:
		return http.StatusBadRequest
	case CodeInsufficientFunds:
		return http.StatusPaymentRequired
	case CodeTransactionRejected:
		return http.StatusBadGateway
	case CodeOperationInProgress:
		return http.StatusConflict
	case CodeStaleSession:
		// Stale results are dropped, not user-facing, but a handler racing a
		// session change reports the conflict rather than fabricating data.
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ToHTTP converts any error to an HTTPError suitable for JSON encoding.
func ToHTTP(err error) *HTTPError {
	if err == nil {
		return nil
	}
	return &HTTPError{
		Status:  StatusCode(err),
		Code:    CodeOf(err),
		Message: err.Error(),
	}
}

// WriteHTTP writes an error as a standardized JSON response.
func WriteHTTP(w http.ResponseWriter, err error) {
	he := ToHTTP(err)
	if he == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.Status)
	_ = json.NewEncoder(w).Encode(he)
}
