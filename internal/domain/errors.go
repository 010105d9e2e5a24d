package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeUnavailable      = "UNAVAILABLE"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Not found errors
var (
	ErrPostNotFound        = NewDomainError(ErrCodeNotFound, "community post not found")
	ErrHelpRequestNotFound = NewDomainError(ErrCodeNotFound, "help request not found")
)

// Operation errors
var (
	ErrAlreadyVolunteered   = NewDomainError(ErrCodeInvalidOperation, "user already volunteered for this request")
	ErrHelpRequestResolved  = NewDomainError(ErrCodeInvalidOperation, "help request is already resolved")
	ErrPostTooShort         = NewDomainError(ErrCodeInvalidOperation, "post is too short to summarize")
	ErrAssistantUnavailable = NewDomainError(ErrCodeUnavailable, "could not generate a response")
)
