package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/oneclass/platform/middleware"
	"github.com/oneclass/platform/services"
	"github.com/oneclass/platform/utils"
)

// HandleServiceError maps a service layer error onto the HTTP error
// contract. Internal errors get logged here with their cause; the response
// body for those carries only the request id.
func HandleServiceError(w http.ResponseWriter, r *http.Request, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	switch services.GetErrorType(err) {
	case services.ErrorTypeInternal, services.ErrorType(""):
		logger.Error("internal service error",
			zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	default:
		logger.Debug("request rejected",
			zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}

	if writeErr := utils.WriteDomainError(w, r, err); writeErr != nil {
		logger.Error("failed to write error response", zap.Error(writeErr))
	}
}

// HandleValidationError maps request payload validation failures to 400
// responses with per-field messages.
func HandleValidationError(w http.ResponseWriter, r *http.Request, err error, logger *zap.Logger) {
	if utils.IsValidationError(err) {
		if writeErr := utils.WriteDomainError(w, r, err); writeErr != nil {
			logger.Error("failed to write validation response", zap.Error(writeErr))
		}
		return
	}

	if writeErr := utils.WriteBadRequest(w, err.Error(), nil); writeErr != nil {
		logger.Error("failed to write validation response", zap.Error(writeErr))
	}
}
