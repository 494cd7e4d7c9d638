package utils

import (
	"errors"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/oneclass/platform/services"
)

// WriteDomainError translates a domain error into its HTTP response. This is
// the whole error contract in one place; middleware and handlers both write
// through it so a given error kind always looks the same on the wire.
//
// Unauthorized, forbidden, and internal errors serialize their message only.
// Their details exist for logs and the audit trail and must never reach a
// client.
func WriteDomainError(w http.ResponseWriter, r *http.Request, err error) error {
	var domainErr *services.DomainError
	if !errors.As(err, &domainErr) {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			details := make(map[string]interface{}, len(validationErr.Fields))
			for field, msg := range validationErr.Fields {
				details[field] = msg
			}
			return WriteError(w, http.StatusBadRequest, string(services.ErrorTypeValidation), validationErr.Message, details)
		}
		return writeRedactedInternal(w, r)
	}

	errType := string(domainErr.Type)

	switch domainErr.Type {
	case services.ErrorTypeUnauthorized:
		return WriteUnauthorized(w, domainErr.Message)
	case services.ErrorTypeForbidden:
		return WriteForbidden(w, domainErr.Message)
	case services.ErrorTypeTenantResolution:
		return WriteError(w, http.StatusBadRequest, errType, domainErr.Message, nil)
	case services.ErrorTypeValidation:
		return WriteError(w, http.StatusBadRequest, errType, domainErr.Message, domainErr.Details)
	case services.ErrorTypeModuleDisabled:
		return WriteError(w, http.StatusForbidden, errType, domainErr.Message, domainErr.Details)
	case services.ErrorTypeSchoolUnavailable:
		return WriteSchoolUnavailable(w, domainErr.Message, domainErr.Details)
	case services.ErrorTypeNotFound:
		return WriteNotFound(w, domainErr.Message)
	case services.ErrorTypeConflict:
		return WriteConflict(w, domainErr.Message, domainErr.Details)
	default:
		return writeRedactedInternal(w, r)
	}
}

// writeRedactedInternal writes a 500 whose body says nothing about the
// failure beyond the request id a caller can quote back to support.
func writeRedactedInternal(w http.ResponseWriter, r *http.Request) error {
	var details map[string]interface{}
	if requestID := chimiddleware.GetReqID(r.Context()); requestID != "" {
		details = map[string]interface{}{"request_id": requestID}
	}
	return WriteError(w, http.StatusInternalServerError, string(services.ErrorTypeInternal), "Internal server error", details)
}
