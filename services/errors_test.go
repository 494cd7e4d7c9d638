package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDomainError(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeNotFound, "resource not found", baseErr)

	assert.Equal(t, ErrorTypeNotFound, domainErr.Type)
	assert.Equal(t, "resource not found", domainErr.Message)
	assert.Equal(t, baseErr, domainErr.Err)
	assert.NotNil(t, domainErr.Details)
}

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *DomainError
		wantMsg string
	}{
		{
			name: "error with wrapped error",
			err: &DomainError{
				Type:    ErrorTypeNotFound,
				Message: "school not found",
				Err:     errors.New("db error"),
			},
			wantMsg: "not_found: school not found (db error)",
		},
		{
			name: "error without wrapped error",
			err: &DomainError{
				Type:    ErrorTypeValidation,
				Message: "invalid input",
				Err:     nil,
			},
			wantMsg: "validation: invalid input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeInternal, "internal error", baseErr)

	unwrapped := errors.Unwrap(domainErr)
	assert.Equal(t, baseErr, unwrapped)
}

func TestDomainError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "same type and message",
			err:    NewDomainError(ErrorTypeNotFound, "school not found", nil),
			target: ErrSchoolNotFound,
			want:   true,
		},
		{
			name:   "same type, different message",
			err:    ErrUserNotFound,
			target: ErrSchoolNotFound,
			want:   false,
		},
		{
			name:   "different type",
			err:    ErrInvalidInput,
			target: ErrSchoolNotFound,
			want:   false,
		},
		{
			name:   "not a domain error",
			err:    NewDomainError(ErrorTypeNotFound, "school not found", nil),
			target: errors.New("regular error"),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestDomainError_WithDetail(t *testing.T) {
	t.Run("attaches details", func(t *testing.T) {
		err := ErrModuleNotEnabled.
			WithDetail("module", "finance_management").
			WithDetail("tier", "trial")

		assert.Equal(t, "finance_management", err.Details["module"])
		assert.Equal(t, "trial", err.Details["tier"])
	})

	t.Run("never mutates the sentinel", func(t *testing.T) {
		derived := ErrSubdomainTaken.WithDetail("subdomain", "stmarys")

		assert.Empty(t, ErrSubdomainTaken.Details)
		assert.Equal(t, "stmarys", derived.Details["subdomain"])
	})

	t.Run("sentinel comparison survives the copy", func(t *testing.T) {
		derived := ErrSchoolSuspended.WithDetail("redirect", "/suspended")

		assert.True(t, errors.Is(derived, ErrSchoolSuspended))
	})
}

func TestErrorTypeHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"not found", ErrStudentNotFound, IsNotFoundError, true},
		{"wrapped not found", fmt.Errorf("lookup: %w", ErrUserNotFound), IsNotFoundError, true},
		{"validation", ErrInvalidSubdomain, IsValidationError, true},
		{"unauthorized", ErrInvalidCredentials, IsUnauthorizedError, true},
		{"forbidden", ErrSchoolMismatch, IsForbiddenError, true},
		{"tenant resolution", ErrMissingTenantContext, IsTenantResolutionError, true},
		{"module disabled", ErrModuleNotEnabled, IsModuleDisabledError, true},
		{"school unavailable suspended", ErrSchoolSuspended, IsSchoolUnavailableError, true},
		{"school unavailable inactive", ErrSchoolInactive, IsSchoolUnavailableError, true},
		{"conflict", ErrDuplicateAdmission, IsConflictError, true},
		{"internal", ErrDatabaseError, IsInternalError, true},
		{"missing scope is internal not tenant resolution", ErrMissingTenantScope, IsTenantResolutionError, false},
		{"regular error", errors.New("regular"), IsNotFoundError, false},
		{"nil error", nil, IsNotFoundError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, ErrorTypeNotFound, GetErrorType(ErrSchoolNotFound))
	assert.Equal(t, ErrorTypeSchoolUnavailable, GetErrorType(ErrSchoolSuspended))
	assert.Equal(t, ErrorTypeInternal, GetErrorType(ErrMissingTenantScope))
	assert.Equal(t, ErrorType(""), GetErrorType(errors.New("regular")))
	assert.Equal(t, ErrorType(""), GetErrorType(nil))
}

func TestGetErrorDetails(t *testing.T) {
	err := ErrModuleNotEnabled.WithDetail("module", "reporting")

	details := GetErrorDetails(err)
	require.NotNil(t, details)
	assert.Equal(t, "reporting", details["module"])

	assert.Nil(t, GetErrorDetails(errors.New("regular")))
}

func TestWrapError(t *testing.T) {
	baseErr := errors.New("pq: unique violation")
	wrapped := WrapError(ErrorTypeConflict, "admission number already in use", baseErr)

	var domainErr *DomainError
	require.True(t, errors.As(wrapped, &domainErr))
	assert.Equal(t, ErrorTypeConflict, domainErr.Type)
	assert.Equal(t, "admission number already in use", domainErr.Message)
	assert.Equal(t, baseErr, errors.Unwrap(wrapped))
}

func TestWrapInternal(t *testing.T) {
	baseErr := errors.New("database connection failed")
	wrapped := WrapInternal("failed to list schools", baseErr)

	assert.True(t, IsInternalError(wrapped))
	assert.Equal(t, baseErr, errors.Unwrap(wrapped))
}

func TestSentinelCatalog(t *testing.T) {
	// Every sentinel carries its type and a non-empty message.
	sentinels := map[ErrorType][]error{
		ErrorTypeNotFound: {
			ErrSchoolNotFound, ErrUserNotFound, ErrStudentNotFound,
			ErrInvoiceNotFound, ErrClassNotFound,
		},
		ErrorTypeValidation: {
			ErrInvalidInput, ErrInvalidSubdomain, ErrInvalidModule, ErrInvalidRole,
		},
		ErrorTypeUnauthorized: {
			ErrInvalidToken, ErrTokenExpired, ErrInvalidCredentials, ErrAuthRequired,
		},
		ErrorTypeTenantResolution: {ErrMissingTenantContext},
		ErrorTypeForbidden:        {ErrSchoolMismatch, ErrPlatformAdminRequired},
		ErrorTypeModuleDisabled:   {ErrModuleNotEnabled},
		ErrorTypeSchoolUnavailable: {
			ErrSchoolSuspended, ErrSchoolInactive,
		},
		ErrorTypeConflict: {
			ErrSubdomainTaken, ErrDuplicateEmail, ErrDuplicateAdmission,
			ErrDuplicateClassName, ErrInvoiceAlreadyVoided,
		},
		ErrorTypeInternal: {ErrMissingTenantScope, ErrInternal, ErrDatabaseError},
	}

	for errType, errs := range sentinels {
		for _, err := range errs {
			var domainErr *DomainError
			require.True(t, errors.As(err, &domainErr), err.Error())
			assert.Equal(t, errType, domainErr.Type, err.Error())
			assert.NotEmpty(t, domainErr.Message, err.Error())
		}
	}
}
