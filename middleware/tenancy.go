package middleware

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oneclass/platform/auth"
	"github.com/oneclass/platform/services"
	"github.com/oneclass/platform/tenancy"
	"github.com/oneclass/platform/utils"
)

// TenantResolver determines which school a request belongs to.
type TenantResolver interface {
	Resolve(req *http.Request) (*tenancy.TenantContext, error)
}

// CrossTenantAuditor records blocked cross-tenant access attempts.
type CrossTenantAuditor interface {
	RecordCrossTenantBlocked(resolvedSchoolID, sessionSchoolID, userID uuid.UUID, requestID string) error
}

// TenancyMiddleware classifies every request and enforces the isolation
// rules of its route class before any handler runs. Tenant-scoped routes get
// a resolved TenantContext or a terminal error response; platform routes get
// a verified platform_admin session; public routes pass straight through.
//
// The pipeline itself never demands a credential on tenant routes. Anonymous
// requests to a resolvable school are legitimate (login pages, public school
// sites); routes that need a user add RequireSession on top.
type TenancyMiddleware struct {
	resolver TenantResolver
	tokens   tenancy.TokenValidator
	audit    CrossTenantAuditor
	logger   *zap.Logger
}

// NewTenancyMiddleware creates a new TenancyMiddleware
func NewTenancyMiddleware(
	resolver TenantResolver,
	tokens tenancy.TokenValidator,
	audit CrossTenantAuditor,
	logger *zap.Logger,
) *TenancyMiddleware {
	return &TenancyMiddleware{
		resolver: resolver,
		tokens:   tokens,
		audit:    audit,
		logger:   logger,
	}
}

// Pipeline is the single entry point for all four route classes.
func (m *TenancyMiddleware) Pipeline(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestID := RequestIDFromContext(r.Context()); requestID != "" {
			w.Header().Set(HeaderRequestID, requestID)
		}

		switch tenancy.Classify(r.URL.Path) {
		case tenancy.RoutePublic, tenancy.RoutePublicPlatform:
			next.ServeHTTP(w, r)
		case tenancy.RoutePlatformAdmin:
			m.requirePlatformAdmin(w, r, next)
		default:
			m.resolveTenant(w, r, next)
		}
	})
}

// requirePlatformAdmin guards /api/v1/platform routes. A platform operator
// session is published on the context; no TenantContext is ever built here,
// platform routes select schools explicitly by id.
func (m *TenancyMiddleware) requirePlatformAdmin(w http.ResponseWriter, r *http.Request, next http.Handler) {
	ctx := r.Context()
	requestID := RequestIDFromContext(ctx)

	token := auth.TokenFromRequest(r)
	if token == "" {
		m.logger.Warn("platform route without credential",
			zap.String("request_id", requestID),
			zap.String("path", r.URL.Path))
		_ = utils.WriteDomainError(w, r, services.ErrAuthRequired)
		return
	}

	claims, err := m.tokens.ValidateToken(ctx, token)
	if err != nil {
		m.logger.Warn("platform credential rejected",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteDomainError(w, r, err)
		return
	}

	session := &tenancy.UserSession{
		UserID:      claims.UserID,
		SchoolID:    claims.SchoolID,
		Role:        claims.Role,
		Permissions: claims.Permissions,
	}
	if !session.IsPlatformAdmin() {
		m.logger.Warn("non-admin credential on platform route",
			zap.String("request_id", requestID),
			zap.String("user_id", session.UserID.String()),
			zap.String("role", session.Role))
		_ = utils.WriteDomainError(w, r, services.ErrPlatformAdminRequired)
		return
	}

	next.ServeHTTP(w, r.WithContext(tenancy.WithSession(ctx, session)))
}

// resolveTenant runs resolution for a tenant-scoped route, gates the path on
// the school's enabled modules, and publishes the TenantContext.
func (m *TenancyMiddleware) resolveTenant(w http.ResponseWriter, r *http.Request, next http.Handler) {
	requestID := RequestIDFromContext(r.Context())

	tc, err := m.resolver.Resolve(r)
	if err != nil {
		m.rejectResolution(w, r, err)
		return
	}
	tc.RequestID = requestID

	if module := tenancy.RequiredModule(r.URL.Path); module != "" && !tc.ModuleEnabled(module) {
		m.logger.Warn("module not enabled for school",
			zap.String("request_id", requestID),
			zap.String("school_id", tc.SchoolID.String()),
			zap.String("module", module),
			zap.String("tier", string(tc.Tier)))
		_ = utils.WriteDomainError(w, r, services.ErrModuleNotEnabled.
			WithDetail("module", module).
			WithDetail("tier", string(tc.Tier)))
		return
	}

	w.Header().Set(HeaderSchoolID, tc.SchoolID.String())
	w.Header().Set(HeaderSchoolName, tc.SchoolName)
	w.Header().Set(HeaderSchoolTier, string(tc.Tier))

	m.logger.Debug("tenant resolved",
		zap.String("request_id", requestID),
		zap.String("school_id", tc.SchoolID.String()),
		zap.String("subdomain", tc.Subdomain),
		zap.String("strategy", string(tc.Strategy)),
		zap.Bool("authenticated", tc.Authenticated()))

	ctx := tenancy.WithTenant(r.Context(), tc)
	if tc.Session != nil {
		ctx = tenancy.WithSession(ctx, tc.Session)
	}
	next.ServeHTTP(w, r.WithContext(ctx))
}

// rejectResolution terminates a request resolution could not place. A
// cross-tenant mismatch additionally lands in the audit trail; the response
// body never carries the party ids, those stay in logs and audit.
func (m *TenancyMiddleware) rejectResolution(w http.ResponseWriter, r *http.Request, err error) {
	requestID := RequestIDFromContext(r.Context())

	if errors.Is(err, services.ErrSchoolMismatch) {
		m.recordCrossTenant(err, requestID)
	}

	m.logger.Warn("tenant resolution failed",
		zap.String("request_id", requestID),
		zap.String("host", r.Host),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	_ = utils.WriteDomainError(w, r, err)
}

func (m *TenancyMiddleware) recordCrossTenant(err error, requestID string) {
	if m.audit == nil {
		return
	}

	var domainErr *services.DomainError
	if !errors.As(err, &domainErr) {
		return
	}
	resolved, ok := domainErr.Details["resolved_school_id"].(uuid.UUID)
	if !ok {
		return
	}
	sessionSchool, ok := domainErr.Details["session_school_id"].(uuid.UUID)
	if !ok {
		return
	}
	userID, ok := domainErr.Details["user_id"].(uuid.UUID)
	if !ok {
		return
	}

	if err := m.audit.RecordCrossTenantBlocked(resolved, sessionSchool, userID, requestID); err != nil {
		m.logger.Warn("failed to record cross-tenant attempt",
			zap.String("request_id", requestID),
			zap.Error(err))
	}
}
