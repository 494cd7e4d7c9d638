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
	"github.com/oneclass/platform/utils"
)

// CreateInvoiceRequest is the request body for issuing a fee invoice
type CreateInvoiceRequest struct {
	StudentID   uuid.UUID `json:"student_id" validate:"required"`
	Term        string    `json:"term" validate:"required,min=1,max=20"`
	AmountCents int64     `json:"amount_cents" validate:"required,gt=0"`
	Currency    string    `json:"currency,omitempty" validate:"omitempty,len=3"`
	DueDate     time.Time `json:"due_date" validate:"required"`
}

// InvoiceHandler handles fee invoices for the resolved school
type InvoiceHandler struct {
	invoices repositories.InvoiceRepository
	students repositories.StudentRepository
	logger   *zap.Logger
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoices repositories.InvoiceRepository, students repositories.StudentRepository, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoices: invoices,
		students: students,
		logger:   logger,
	}
}

// HandleList handles GET /api/v1/finance/invoices.
// An optional student_id query parameter narrows the listing to one student.
func (h *InvoiceHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if raw := r.URL.Query().Get("student_id"); raw != "" {
		studentID, err := uuid.Parse(raw)
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid student_id format", nil)
			return
		}
		invoices, err := h.invoices.ListByStudent(ctx, studentID)
		if err != nil {
			HandleServiceError(w, r, err, h.logger)
			return
		}
		_ = utils.WriteOK(w, invoices)
		return
	}

	limit, offset := parsePagination(r)
	invoices, err := h.invoices.List(ctx, limit, offset)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, invoices)
}

// HandleCreate handles POST /api/v1/finance/invoices.
// The student must exist in the resolved school; the scoped lookup makes a
// foreign student indistinguishable from a missing one.
func (h *InvoiceHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.RequestIDFromContext(ctx)

	var req CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, r, err, h.logger)
		return
	}

	student, err := h.students.GetByID(ctx, req.StudentID)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	invoice := models.NewInvoice(student.SchoolID, student.ID, req.Term, req.AmountCents, req.Currency, req.DueDate)
	if err := h.invoices.Create(ctx, invoice); err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	h.logger.Info("invoice created",
		zap.String("request_id", requestID),
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("student_id", student.ID.String()),
		zap.Int64("amount_cents", invoice.AmountCents))

	_ = utils.WriteCreated(w, invoice)
}

// HandleGet handles GET /api/v1/finance/invoices/{id}
func (h *InvoiceHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid invoice ID format", nil)
		return
	}

	invoice, err := h.invoices.GetByID(r.Context(), id)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, invoice)
}

// HandleVoid handles POST /api/v1/finance/invoices/{id}/void.
// Invoices are never deleted; voiding is the terminal state for mistakes.
func (h *InvoiceHandler) HandleVoid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.RequestIDFromContext(ctx)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid invoice ID format", nil)
		return
	}

	invoice, err := h.invoices.GetByID(ctx, id)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	if invoice.Status == models.InvoiceStatusVoid {
		HandleServiceError(w, r, services.ErrInvoiceAlreadyVoided, h.logger)
		return
	}

	if err := h.invoices.UpdateStatus(ctx, id, models.InvoiceStatusVoid); err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	invoice.Status = models.InvoiceStatusVoid
	invoice.UpdatedAt = time.Now()

	h.logger.Info("invoice voided",
		zap.String("request_id", requestID),
		zap.String("invoice_id", invoice.ID.String()))

	_ = utils.WriteOK(w, invoice)
}
