package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeNotFound          ErrorType = "not_found"
	ErrorTypeValidation        ErrorType = "validation"
	ErrorTypeUnauthorized      ErrorType = "unauthorized"
	ErrorTypeForbidden         ErrorType = "forbidden"
	ErrorTypeTenantResolution  ErrorType = "tenant_resolution"
	ErrorTypeModuleDisabled    ErrorType = "module_disabled"
	ErrorTypeSchoolUnavailable ErrorType = "school_unavailable"
	ErrorTypeConflict          ErrorType = "conflict"
	ErrorTypeInternal          ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is. Two domain errors match when their types and
// messages match, so sentinel comparisons survive WithDetail copies.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithDetail returns a copy of the error with a detail attached. The
// receiver is never mutated so the package-level sentinels stay clean.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &DomainError{
		Type:    e.Type,
		Message: e.Message,
		Err:     e.Err,
		Details: details,
	}
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// Domain error variables

var (
	// Not Found Errors
	ErrSchoolNotFound  = NewDomainError(ErrorTypeNotFound, "school not found", nil)
	ErrUserNotFound    = NewDomainError(ErrorTypeNotFound, "user not found", nil)
	ErrStudentNotFound = NewDomainError(ErrorTypeNotFound, "student not found", nil)
	ErrInvoiceNotFound = NewDomainError(ErrorTypeNotFound, "invoice not found", nil)
	ErrClassNotFound   = NewDomainError(ErrorTypeNotFound, "class not found", nil)

	// Validation Errors
	ErrInvalidInput     = NewDomainError(ErrorTypeValidation, "invalid input", nil)
	ErrInvalidSubdomain = NewDomainError(ErrorTypeValidation, "invalid subdomain", nil)
	ErrInvalidModule    = NewDomainError(ErrorTypeValidation, "unknown module name", nil)
	ErrInvalidRole      = NewDomainError(ErrorTypeValidation, "unknown role", nil)

	// Credential Errors. The message deliberately does not reveal whether
	// the signature, the subject, or the password was at fault.
	ErrInvalidToken       = NewDomainError(ErrorTypeUnauthorized, "invalid authentication token", nil)
	ErrTokenExpired       = NewDomainError(ErrorTypeUnauthorized, "authentication token expired", nil)
	ErrInvalidCredentials = NewDomainError(ErrorTypeUnauthorized, "invalid email or password", nil)
	ErrAuthRequired       = NewDomainError(ErrorTypeUnauthorized, "authentication required", nil)

	// Tenancy Errors
	ErrMissingTenantContext  = NewDomainError(ErrorTypeTenantResolution, "unable to determine school for request", nil)
	ErrMissingTenantScope    = NewDomainError(ErrorTypeInternal, "no school scope on request context", nil)
	ErrSchoolMismatch        = NewDomainError(ErrorTypeForbidden, "credential belongs to a different school", nil)
	ErrPlatformAdminRequired = NewDomainError(ErrorTypeForbidden, "platform administrator role required", nil)
	ErrModuleNotEnabled      = NewDomainError(ErrorTypeModuleDisabled, "module not enabled for this school", nil)
	ErrSchoolSuspended       = NewDomainError(ErrorTypeSchoolUnavailable, "school account is suspended", nil)
	ErrSchoolInactive        = NewDomainError(ErrorTypeSchoolUnavailable, "school account is inactive", nil)

	// Conflict Errors
	ErrSubdomainTaken       = NewDomainError(ErrorTypeConflict, "subdomain already registered", nil)
	ErrDuplicateEmail       = NewDomainError(ErrorTypeConflict, "email already registered for this school", nil)
	ErrDuplicateAdmission   = NewDomainError(ErrorTypeConflict, "admission number already in use", nil)
	ErrDuplicateClassName   = NewDomainError(ErrorTypeConflict, "class name already in use", nil)
	ErrInvoiceAlreadyVoided = NewDomainError(ErrorTypeConflict, "invoice is already void", nil)

	// Internal Errors
	ErrInternal      = NewDomainError(ErrorTypeInternal, "internal server error", nil)
	ErrDatabaseError = NewDomainError(ErrorTypeInternal, "database error", nil)
)

// Error type checking helper functions

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeNotFound
	}
	return false
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeValidation
	}
	return false
}

// IsUnauthorizedError checks if an error is an unauthorized error
func IsUnauthorizedError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeUnauthorized
	}
	return false
}

// IsForbiddenError checks if an error is a forbidden error
func IsForbiddenError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeForbidden
	}
	return false
}

// IsTenantResolutionError checks if an error means no tenant could be resolved
func IsTenantResolutionError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeTenantResolution
	}
	return false
}

// IsModuleDisabledError checks if an error is a module entitlement denial
func IsModuleDisabledError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeModuleDisabled
	}
	return false
}

// IsSchoolUnavailableError checks if an error means the school is
// suspended or inactive (resolved but not operable)
func IsSchoolUnavailableError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeSchoolUnavailable
	}
	return false
}

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeConflict
	}
	return false
}

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeInternal
	}
	return false
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapError wraps an error with additional context
func WrapError(errType ErrorType, message string, err error) error {
	return NewDomainError(errType, message, err)
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}
