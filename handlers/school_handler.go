package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oneclass/platform/config"
	"github.com/oneclass/platform/middleware"
	"github.com/oneclass/platform/models"
	"github.com/oneclass/platform/services/directory"
	"github.com/oneclass/platform/services/schools"
	"github.com/oneclass/platform/tenancy"
	"github.com/oneclass/platform/utils"
)

// RegisterSchoolRequest is the self-service registration request body
type RegisterSchoolRequest struct {
	Name          string `json:"name" validate:"required,min=2,max=255"`
	Subdomain     string `json:"subdomain" validate:"required,min=3,max=20"`
	AdminEmail    string `json:"admin_email" validate:"required,email"`
	AdminPassword string `json:"admin_password" validate:"required,min=8"`
}

// RegisterSchoolResponse is the response body for a successful registration
type RegisterSchoolResponse struct {
	School    *models.School `json:"school"`
	Admin     *models.User   `json:"admin"`
	Token     string         `json:"token,omitempty"`
	ExpiresAt string         `json:"expires_at,omitempty"`
}

// ValidateSubdomainRequest is the request body for subdomain validation
type ValidateSubdomainRequest struct {
	Subdomain string `json:"subdomain" validate:"required"`
}

// SuggestSubdomainsRequest is the request body for subdomain suggestions
type SuggestSubdomainsRequest struct {
	Name  string `json:"name" validate:"required,min=2"`
	Limit int    `json:"limit,omitempty" validate:"omitempty,gte=1,lte=10"`
}

// SchoolInfo is the public view of a school returned by the by-subdomain
// lookup. It carries exactly what a tenant frontend needs to boot.
type SchoolInfo struct {
	ID        uuid.UUID               `json:"id"`
	Name      string                  `json:"name"`
	Subdomain string                  `json:"subdomain"`
	Status    models.SchoolStatus     `json:"status"`
	Tier      models.SubscriptionTier `json:"tier"`
	Modules   []string                `json:"modules"`
}

// DirectoryEntry is one school in the public directory listing
type DirectoryEntry struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Subdomain string    `json:"subdomain"`
}

// SchoolHandler handles the public school surface: registration, subdomain
// checks, and directory lookups.
type SchoolHandler struct {
	schools   *schools.Service
	directory *directory.Service
	cfg       *config.Config
	logger    *zap.Logger
}

// NewSchoolHandler creates a new SchoolHandler
func NewSchoolHandler(schoolsSvc *schools.Service, dir *directory.Service, cfg *config.Config, logger *zap.Logger) *SchoolHandler {
	return &SchoolHandler{
		schools:   schoolsSvc,
		directory: dir,
		cfg:       cfg,
		logger:    logger,
	}
}

// HandleRegister handles POST /api/v1/schools/register.
// Returns a session token for the new school admin and sets the session
// cookie so onboarding continues without a separate login.
func (h *SchoolHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.RequestIDFromContext(ctx)

	var req RegisterSchoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, r, err, h.logger)
		return
	}

	result, err := h.schools.Register(ctx, schools.RegisterInput{
		Name:          req.Name,
		Subdomain:     req.Subdomain,
		AdminEmail:    req.AdminEmail,
		AdminPassword: req.AdminPassword,
		RequestID:     requestID,
	})
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	setSessionCookie(w, result.Token, h.cfg.Auth.TokenTTL, secureCookies(h.cfg))

	_ = utils.WriteCreated(w, RegisterSchoolResponse{
		School:    result.School,
		Admin:     result.Admin,
		Token:     result.Token,
		ExpiresAt: time.Now().Add(h.cfg.Auth.TokenTTL).UTC().Format(time.RFC3339),
	})
}

// HandleBySubdomain handles GET /api/v1/schools/by-subdomain/{subdomain}.
// A suspended or inactive school answers 200 with the redirect payload, the
// same shape the tenant pipeline produces, so frontends handle one contract.
func (h *SchoolHandler) HandleBySubdomain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subdomain := tenancy.NormalizeSubdomain(chi.URLParam(r, "subdomain"))
	record, err := h.directory.BySubdomain(ctx, subdomain)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	if !record.School.Status.Operable() {
		HandleServiceError(w, r, tenancy.SchoolUnavailableError(&record.School), h.logger)
		return
	}

	_ = utils.WriteOK(w, SchoolInfo{
		ID:        record.School.ID,
		Name:      record.School.Name,
		Subdomain: record.School.Subdomain,
		Status:    record.School.Status,
		Tier:      record.School.Tier,
		Modules:   record.Modules,
	})
}

// HandleValidateSubdomain handles POST /api/v1/schools/validate-subdomain
func (h *SchoolHandler) HandleValidateSubdomain(w http.ResponseWriter, r *http.Request) {
	var req ValidateSubdomainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, r, err, h.logger)
		return
	}

	check, err := h.schools.CheckSubdomain(r.Context(), req.Subdomain)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, check)
}

// HandleSuggestSubdomains handles POST /api/v1/schools/suggest-subdomains
func (h *SchoolHandler) HandleSuggestSubdomains(w http.ResponseWriter, r *http.Request) {
	var req SuggestSubdomainsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, r, err, h.logger)
		return
	}

	suggestions, err := h.schools.SuggestSubdomains(r.Context(), req.Name, req.Limit)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, map[string]interface{}{"suggestions": suggestions})
}

// HandleDirectory handles GET /api/v1/schools/directory
func (h *SchoolHandler) HandleDirectory(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	listed, err := h.schools.ListDirectory(r.Context(), limit, offset)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	entries := make([]DirectoryEntry, len(listed))
	for i, school := range listed {
		entries[i] = DirectoryEntry{
			ID:        school.ID,
			Name:      school.Name,
			Subdomain: school.Subdomain,
		}
	}

	_ = utils.WriteOK(w, entries)
}
