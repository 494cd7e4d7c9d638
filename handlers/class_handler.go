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
	"github.com/oneclass/platform/tenancy"
	"github.com/oneclass/platform/utils"
)

// CreateClassRequest is the request body for creating a class
type CreateClassRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Level       string `json:"level" validate:"required,min=1,max=50"`
	TeacherName string `json:"teacher_name,omitempty" validate:"omitempty,max=100"`
}

// UpdateClassRequest is the request body for updating a class
type UpdateClassRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Level       *string `json:"level,omitempty" validate:"omitempty,min=1,max=50"`
	TeacherName *string `json:"teacher_name,omitempty" validate:"omitempty,max=100"`
}

// ClassHandler handles teaching classes for the resolved school
type ClassHandler struct {
	classes repositories.ClassRepository
	logger  *zap.Logger
}

// NewClassHandler creates a new ClassHandler
func NewClassHandler(classes repositories.ClassRepository, logger *zap.Logger) *ClassHandler {
	return &ClassHandler{
		classes: classes,
		logger:  logger,
	}
}

// HandleList handles GET /api/v1/academic/classes
func (h *ClassHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	classes, err := h.classes.List(r.Context(), limit, offset)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, classes)
}

// HandleCreate handles POST /api/v1/academic/classes
func (h *ClassHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.RequestIDFromContext(ctx)

	tc, ok := tenancy.FromContext(ctx)
	if !ok {
		HandleServiceError(w, r, services.ErrMissingTenantScope, h.logger)
		return
	}

	var req CreateClassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, r, err, h.logger)
		return
	}

	class := models.NewSchoolClass(tc.SchoolID, req.Name, req.Level, req.TeacherName)
	if err := h.classes.Create(ctx, class); err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	h.logger.Info("class created",
		zap.String("request_id", requestID),
		zap.String("class_id", class.ID.String()),
		zap.String("school_id", class.SchoolID.String()))

	_ = utils.WriteCreated(w, class)
}

// HandleGet handles GET /api/v1/academic/classes/{id}
func (h *ClassHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid class ID format", nil)
		return
	}

	class, err := h.classes.GetByID(r.Context(), id)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, class)
}

// HandleUpdate handles PUT /api/v1/academic/classes/{id}
func (h *ClassHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.RequestIDFromContext(ctx)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid class ID format", nil)
		return
	}

	var req UpdateClassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, r, err, h.logger)
		return
	}

	class, err := h.classes.GetByID(ctx, id)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	if req.Name != nil {
		class.Name = *req.Name
	}
	if req.Level != nil {
		class.Level = *req.Level
	}
	if req.TeacherName != nil {
		class.TeacherName = *req.TeacherName
	}
	class.UpdatedAt = time.Now()

	if err := h.classes.Update(ctx, class); err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	h.logger.Info("class updated",
		zap.String("request_id", requestID),
		zap.String("class_id", class.ID.String()))

	_ = utils.WriteOK(w, class)
}

// HandleDelete handles DELETE /api/v1/academic/classes/{id}
func (h *ClassHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.RequestIDFromContext(ctx)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid class ID format", nil)
		return
	}

	if err := h.classes.Delete(ctx, id); err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	h.logger.Info("class deleted",
		zap.String("request_id", requestID),
		zap.String("class_id", id.String()))

	utils.WriteNoContent(w)
}
