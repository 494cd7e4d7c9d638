package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/oneclass/platform/services"
	"github.com/oneclass/platform/tenancy"
)

// schoolScope returns the school id of the current request. Tenant-scoped
// repositories call this first and put the id into every statement; a
// missing scope is a hard failure, never an unscoped query.
func schoolScope(ctx context.Context) (uuid.UUID, error) {
	schoolID, ok := tenancy.SchoolIDFromContext(ctx)
	if !ok {
		return uuid.Nil, services.ErrMissingTenantScope
	}
	return schoolID, nil
}

// uniqueViolations maps unique constraint names from the migrations to the
// domain error a conflict on them means.
var uniqueViolations = map[string]*services.DomainError{
	"schools_subdomain_key":         services.ErrSubdomainTaken,
	"users_school_email_key":        services.ErrDuplicateEmail,
	"users_platform_email_key":      services.ErrDuplicateEmail,
	"students_admission_number_key": services.ErrDuplicateAdmission,
	"school_classes_name_key":       services.ErrDuplicateClassName,
}

// mapUniqueViolation converts a lib/pq unique violation into its domain
// error, or returns nil when err is something else.
func mapUniqueViolation(err error) *services.DomainError {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return nil
	}
	if domainErr, ok := uniqueViolations[pqErr.Constraint]; ok {
		return domainErr
	}
	return services.NewDomainError(services.ErrorTypeConflict, "duplicate record", nil)
}
