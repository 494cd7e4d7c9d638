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

// CreateStudentRequest is the request body for creating a student
type CreateStudentRequest struct {
	FirstName       string `json:"first_name" validate:"required,min=1,max=100"`
	LastName        string `json:"last_name" validate:"required,min=1,max=100"`
	AdmissionNumber string `json:"admission_number" validate:"required,min=1,max=50"`
	Level           string `json:"level" validate:"required,min=1,max=50"`
}

// UpdateStudentRequest is the request body for updating a student.
// All fields are optional; absent fields keep their value.
type UpdateStudentRequest struct {
	FirstName       *string `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName        *string `json:"last_name,omitempty" validate:"omitempty,min=1,max=100"`
	AdmissionNumber *string `json:"admission_number,omitempty" validate:"omitempty,min=1,max=50"`
	Level           *string `json:"level,omitempty" validate:"omitempty,min=1,max=50"`
}

// StudentHandler handles student records for the resolved school
type StudentHandler struct {
	students repositories.StudentRepository
	logger   *zap.Logger
}

// NewStudentHandler creates a new StudentHandler
func NewStudentHandler(students repositories.StudentRepository, logger *zap.Logger) *StudentHandler {
	return &StudentHandler{
		students: students,
		logger:   logger,
	}
}

// HandleList handles GET /api/v1/sis/students
func (h *StudentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	students, err := h.students.List(r.Context(), limit, offset)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, students)
}

// HandleCreate handles POST /api/v1/sis/students
func (h *StudentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.RequestIDFromContext(ctx)

	tc, ok := tenancy.FromContext(ctx)
	if !ok {
		HandleServiceError(w, r, services.ErrMissingTenantScope, h.logger)
		return
	}

	var req CreateStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, r, err, h.logger)
		return
	}

	student := models.NewStudent(tc.SchoolID, req.FirstName, req.LastName, req.AdmissionNumber, req.Level)
	if err := h.students.Create(ctx, student); err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	h.logger.Info("student created",
		zap.String("request_id", requestID),
		zap.String("student_id", student.ID.String()),
		zap.String("school_id", student.SchoolID.String()))

	_ = utils.WriteCreated(w, student)
}

// HandleGet handles GET /api/v1/sis/students/{id}
func (h *StudentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid student ID format", nil)
		return
	}

	student, err := h.students.GetByID(r.Context(), id)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, student)
}

// HandleUpdate handles PUT /api/v1/sis/students/{id}
func (h *StudentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.RequestIDFromContext(ctx)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid student ID format", nil)
		return
	}

	var req UpdateStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, r, err, h.logger)
		return
	}

	student, err := h.students.GetByID(ctx, id)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	if req.FirstName != nil {
		student.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		student.LastName = *req.LastName
	}
	if req.AdmissionNumber != nil {
		student.AdmissionNumber = *req.AdmissionNumber
	}
	if req.Level != nil {
		student.Level = *req.Level
	}
	student.UpdatedAt = time.Now()

	if err := h.students.Update(ctx, student); err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	h.logger.Info("student updated",
		zap.String("request_id", requestID),
		zap.String("student_id", student.ID.String()))

	_ = utils.WriteOK(w, student)
}

// HandleDelete handles DELETE /api/v1/sis/students/{id}
func (h *StudentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.RequestIDFromContext(ctx)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid student ID format", nil)
		return
	}

	if err := h.students.Delete(ctx, id); err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	h.logger.Info("student deleted",
		zap.String("request_id", requestID),
		zap.String("student_id", id.String()))

	utils.WriteNoContent(w)
}
