package gateway

import (
	"errors"
	"fmt"
)

// ErrorCategory defines the normalized failure taxonomy for upstream calls.
//
// Categories let the retry loop and the handlers make consistent decisions
// without inspecting raw error strings: transport failures and timeouts are
// retryable, everything else is final.
type ErrorCategory string

const (
	// ErrorConfig indicates the selected product has no usable credential.
	ErrorConfig ErrorCategory = "config"

	// ErrorTransport indicates the request never produced a response
	// (connection refused, DNS failure, reset).
	ErrorTransport ErrorCategory = "transport"

	// ErrorTimeout indicates the call exceeded its deadline.
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorHTTP indicates the upstream responded with a non-2xx status.
	ErrorHTTP ErrorCategory = "http"

	// ErrorUpstream indicates a 2xx response whose body signals a logical
	// error ({status:"error", message}).
	ErrorUpstream ErrorCategory = "upstream"

	// ErrorParse indicates the response body was not valid JSON.
	ErrorParse ErrorCategory = "parse"
)

// UpstreamError wraps upstream call failures with normalized categorization.
type UpstreamError struct {
	Category   ErrorCategory
	Product    string
	Message    string
	StatusCode int
	Underlying error
	Retryable  bool
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("upstream %s [%s]: %s: %v", e.Product, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("upstream %s [%s]: %s", e.Product, e.Category, e.Message)
}

// Unwrap supports error unwrapping.
func (e *UpstreamError) Unwrap() error {
	return e.Underlying
}

// NewUpstreamError creates a normalized upstream error with automatic retry
// classification. Only transport failures and timeouts are retryable; a
// received HTTP status, whatever its value, is final.
func NewUpstreamError(category ErrorCategory, product, message string, underlying error) *UpstreamError {
	return &UpstreamError{
		Category:   category,
		Product:    product,
		Message:    message,
		Underlying: underlying,
		Retryable:  category == ErrorTransport || category == ErrorTimeout,
	}
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Retryable
	}
	return false
}

// Categorize extracts the error category from an error.
func Categorize(err error) ErrorCategory {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Category
	}
	return ErrorTransport
}
