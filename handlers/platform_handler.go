package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oneclass/platform/middleware"
	"github.com/oneclass/platform/models"
	"github.com/oneclass/platform/repositories"
	"github.com/oneclass/platform/services"
	"github.com/oneclass/platform/services/schools"
	"github.com/oneclass/platform/tenancy"
	"github.com/oneclass/platform/utils"
)

// CreateSchoolRequest is the platform-side school onboarding request body.
// Unlike self-service registration it is always performed by an operator.
type CreateSchoolRequest struct {
	Name          string `json:"name" validate:"required,min=2,max=255"`
	Subdomain     string `json:"subdomain" validate:"required,min=3,max=20"`
	AdminEmail    string `json:"admin_email" validate:"required,email"`
	AdminPassword string `json:"admin_password" validate:"required,min=8"`
}

// UpdateSchoolStatusRequest is the request body for PATCH .../status
type UpdateSchoolStatusRequest struct {
	Status models.SchoolStatus `json:"status" validate:"required"`
}

// UpdateSubscriptionRequest is the request body for PATCH .../subscription
type UpdateSubscriptionRequest struct {
	Tier models.SubscriptionTier `json:"tier" validate:"required"`
}

// SetModulesRequest is the request body for PUT .../modules
type SetModulesRequest struct {
	Modules []string `json:"modules" validate:"required"`
}

// PlatformHandler handles the operator-facing school administration surface.
// Every route behind it has already passed the platform_admin guard.
type PlatformHandler struct {
	schools *schools.Service
	audit   repositories.AuditRepository
	logger  *zap.Logger
}

// NewPlatformHandler creates a new PlatformHandler
func NewPlatformHandler(schoolsSvc *schools.Service, auditRepo repositories.AuditRepository, logger *zap.Logger) *PlatformHandler {
	return &PlatformHandler{
		schools: schoolsSvc,
		audit:   auditRepo,
		logger:  logger,
	}
}

// actor returns the operator session, which the platform admin guard has
// already established.
func actor(r *http.Request) (*tenancy.UserSession, error) {
	session := tenancy.SessionFromContext(r.Context())
	if session == nil {
		return nil, services.ErrAuthRequired
	}
	return session, nil
}

// HandleListSchools handles GET /api/v1/platform/schools
func (h *PlatformHandler) HandleListSchools(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	var status *models.SchoolStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := models.SchoolStatus(raw)
		status = &s
	}

	listed, err := h.schools.ListSchools(r.Context(), status, limit, offset)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, listed)
}

// HandleCreateSchool handles POST /api/v1/platform/schools.
// The new school admin's token is deliberately not returned; the operator
// onboards the school, the admin logs in themselves.
func (h *PlatformHandler) HandleCreateSchool(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.RequestIDFromContext(ctx)

	session, err := actor(r)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	var req CreateSchoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, r, err, h.logger)
		return
	}

	actorID := session.UserID
	result, err := h.schools.Register(ctx, schools.RegisterInput{
		Name:          req.Name,
		Subdomain:     req.Subdomain,
		AdminEmail:    req.AdminEmail,
		AdminPassword: req.AdminPassword,
		ActorID:       &actorID,
		RequestID:     requestID,
	})
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, RegisterSchoolResponse{
		School: result.School,
		Admin:  result.Admin,
	})
}

// HandleGetSchool handles GET /api/v1/platform/schools/{id}
func (h *PlatformHandler) HandleGetSchool(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid school ID format", nil)
		return
	}

	detail, err := h.schools.GetSchool(r.Context(), id)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, detail)
}

// HandleUpdateStatus handles PATCH /api/v1/platform/schools/{id}/status
func (h *PlatformHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.RequestIDFromContext(ctx)

	session, err := actor(r)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid school ID format", nil)
		return
	}

	var req UpdateSchoolStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, r, err, h.logger)
		return
	}

	school, err := h.schools.ChangeStatus(ctx, id, req.Status, session.UserID, requestID)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, school)
}

// HandleUpdateSubscription handles PATCH /api/v1/platform/schools/{id}/subscription
func (h *PlatformHandler) HandleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.RequestIDFromContext(ctx)

	session, err := actor(r)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid school ID format", nil)
		return
	}

	var req UpdateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, r, err, h.logger)
		return
	}

	school, err := h.schools.ChangeTier(ctx, id, req.Tier, session.UserID, requestID)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, school)
}

// HandleSetModules handles PUT /api/v1/platform/schools/{id}/modules
func (h *PlatformHandler) HandleSetModules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.RequestIDFromContext(ctx)

	session, err := actor(r)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid school ID format", nil)
		return
	}

	var req SetModulesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, r, err, h.logger)
		return
	}

	modules, err := h.schools.SetModules(ctx, id, req.Modules, session.UserID, requestID)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, map[string]interface{}{"modules": modules})
}

// HandleListAuditLogs handles GET /api/v1/platform/audit-logs.
// Filters: school_id, action, or a from/to time range (default last 24h).
func (h *PlatformHandler) HandleListAuditLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, offset := parsePagination(r)
	query := r.URL.Query()

	if raw := query.Get("school_id"); raw != "" {
		schoolID, err := uuid.Parse(raw)
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid school_id format", nil)
			return
		}
		logs, err := h.audit.GetBySchoolID(ctx, schoolID, limit, offset)
		if err != nil {
			HandleServiceError(w, r, err, h.logger)
			return
		}
		_ = utils.WriteOK(w, logs)
		return
	}

	if raw := query.Get("action"); raw != "" {
		logs, err := h.audit.GetByAction(ctx, models.AuditAction(raw), limit, offset)
		if err != nil {
			HandleServiceError(w, r, err, h.logger)
			return
		}
		_ = utils.WriteOK(w, logs)
		return
	}

	to := time.Now()
	from := to.Add(-24 * time.Hour)
	if raw := query.Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid 'from' timestamp, want RFC3339", nil)
			return
		}
		from = parsed
	}
	if raw := query.Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid 'to' timestamp, want RFC3339", nil)
			return
		}
		to = parsed
	}

	logs, err := h.audit.GetByDateRange(ctx, from, to, limit, offset)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, logs)
}
