package handlers

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oneclass/platform/auth"
	"github.com/oneclass/platform/config"
	"github.com/oneclass/platform/middleware"
	"github.com/oneclass/platform/models"
	"github.com/oneclass/platform/services"
	"github.com/oneclass/platform/services/directory"
	"github.com/oneclass/platform/tenancy"
	"github.com/oneclass/platform/utils"
)

// LoginRequest is the request body for POST /api/v1/auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`

	// Subdomain names the school to log into when the request does not
	// arrive on a school host. Ignored whenever the Host already names one.
	Subdomain string `json:"subdomain,omitempty" validate:"omitempty,min=3,max=63"`
}

// LoginResponse is the response body for a successful login
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
	User      *models.User `json:"user"`
}

// TenantEcho is the resolved school as echoed back on /auth/me
type TenantEcho struct {
	ID        uuid.UUID               `json:"id"`
	Name      string                  `json:"name"`
	Subdomain string                  `json:"subdomain"`
	Tier      models.SubscriptionTier `json:"tier"`
	Modules   []string                `json:"modules"`
}

// MeResponse is the response body for GET /api/v1/auth/me
type MeResponse struct {
	UserID      uuid.UUID   `json:"user_id"`
	SchoolID    *uuid.UUID  `json:"school_id,omitempty"`
	Role        string      `json:"role"`
	Permissions []string    `json:"permissions"`
	School      *TenantEcho `json:"school,omitempty"`
}

// AuthHandler handles login, logout, and session introspection
type AuthHandler struct {
	auth      *auth.Service
	directory *directory.Service
	cfg       *config.Config
	logger    *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authSvc *auth.Service, dir *directory.Service, cfg *config.Config, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:      authSvc,
		directory: dir,
		cfg:       cfg,
		logger:    logger,
	}
}

// HandleLogin handles POST /api/v1/auth/login.
//
// The school is taken from the request Host first so a login sent to a
// school subdomain can never land on another school, whatever the body
// says. The body subdomain serves clients on the bare domain, and no school
// at all means a platform administrator login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.RequestIDFromContext(ctx)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, r, err, h.logger)
		return
	}

	var schoolID *uuid.UUID
	subdomain := ""
	if sub, ok := tenancy.SubdomainFromHost(r.Host, h.cfg.Tenancy.BaseDomain); ok {
		subdomain = sub
	} else if req.Subdomain != "" {
		subdomain = req.Subdomain
	}
	if subdomain != "" {
		record, err := h.directory.BySubdomain(ctx, subdomain)
		if err != nil {
			HandleServiceError(w, r, err, h.logger)
			return
		}
		if !record.School.Status.Operable() {
			HandleServiceError(w, r, tenancy.SchoolUnavailableError(&record.School), h.logger)
			return
		}
		schoolID = &record.School.ID
	}

	user, token, err := h.auth.Login(ctx, schoolID, req.Email, req.Password)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	// Platform administrators have no school; school staff must log in
	// against their own school, which the nil-school lookup already
	// guarantees by never matching them.
	setSessionCookie(w, token, h.auth.TokenTTL(), secureCookies(h.cfg))

	h.logger.Info("login succeeded",
		zap.String("request_id", requestID),
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	_ = utils.WriteOK(w, LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.auth.TokenTTL()).UTC().Format(time.RFC3339),
		User:      user,
	})
}

// HandleLogout handles POST /api/v1/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w, secureCookies(h.cfg))
	_ = utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse{Message: "logged out"})
}

// HandleMe handles GET /api/v1/auth/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session := tenancy.SessionFromContext(ctx)
	if session == nil {
		HandleServiceError(w, r, services.ErrAuthRequired, h.logger)
		return
	}

	resp := MeResponse{
		UserID:      session.UserID,
		Role:        session.Role,
		Permissions: session.Permissions,
	}
	if session.SchoolID != uuid.Nil {
		schoolID := session.SchoolID
		resp.SchoolID = &schoolID
	}

	if tc, ok := tenancy.FromContext(ctx); ok {
		modules := make([]string, 0, len(tc.Modules))
		for m, enabled := range tc.Modules {
			if enabled {
				modules = append(modules, m)
			}
		}
		sort.Strings(modules)
		resp.School = &TenantEcho{
			ID:        tc.SchoolID,
			Name:      tc.SchoolName,
			Subdomain: tc.Subdomain,
			Tier:      tc.Tier,
			Modules:   modules,
		}
	}

	_ = utils.WriteOK(w, resp)
}

// setSessionCookie stores the token for browser clients. Host-only (no
// Domain attribute) so a session cookie set on one school subdomain is
// never presented to another.
func setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// secureCookies reports whether cookies should carry the Secure attribute.
func secureCookies(cfg *config.Config) bool {
	return cfg.Server.TLS.Enabled || cfg.IsProduction()
}
