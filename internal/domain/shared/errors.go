package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound      = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput  = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState  = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInvalidItem   = NewDomainError("INVALID_ITEM", "Line item has invalid quantity or price")
	ErrEmptyReceipt  = NewDomainError("EMPTY_RECEIPT", "No quantities staged for receipt")
	ErrStaleResponse = NewDomainError("STALE_RESPONSE", "Response superseded by a newer request")
)

// BusinessRuleError represents a rejection returned by the order service
// (e.g. deleting an order that is no longer PENDING). These are surfaced to
// the user as-is; the client does not attempt remediation.
type BusinessRuleError struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// Error implements the error interface
func (e *BusinessRuleError) Error() string {
	return e.Message
}

// NewBusinessRuleError creates a new business rule error
func NewBusinessRuleError(statusCode int, code, message string) *BusinessRuleError {
	return &BusinessRuleError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
	}
}

// Transport-level sentinel errors. Adapters wrap these with %w so callers can
// classify failures without inspecting adapter internals.
var (
	ErrServiceUnavailable = errors.New("order service unavailable")
	ErrRequestFailed      = errors.New("order service request failed")
	ErrInvalidResponse    = errors.New("invalid response from order service")
)

// IsValidation reports whether err was caught locally before any network call
func IsValidation(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// IsBusinessRule reports whether err is a server-side business rule rejection
func IsBusinessRule(err error) bool {
	var be *BusinessRuleError
	return errors.As(err, &be)
}

// IsTransport reports whether err is a network or protocol failure. The
// operation that produced it is left retryable.
func IsTransport(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrRequestFailed) ||
		errors.Is(err, ErrInvalidResponse)
}
