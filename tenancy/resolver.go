package tenancy

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oneclass/platform/auth"
	"github.com/oneclass/platform/config"
	"github.com/oneclass/platform/models"
	"github.com/oneclass/platform/services"
	"github.com/oneclass/platform/services/directory"
)

// Directory is the read side school lookup resolution runs on.
type Directory interface {
	BySubdomain(ctx context.Context, subdomain string) (*directory.Record, error)
	ByID(ctx context.Context, id uuid.UUID) (*directory.Record, error)
}

// TokenValidator validates a raw credential into parsed claims.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*auth.ParsedClaims, error)
}

// Resolver determines which school a request belongs to. Strategies run in a
// fixed order and short-circuit: host subdomain, then the school claim of a
// validated credential, then the development fallback. A request that no
// strategy can place fails with ErrMissingTenantContext before any handler
// runs.
type Resolver struct {
	directory Directory
	tokens    TokenValidator
	cfg       *config.Config
	logger    *zap.Logger
}

// NewResolver creates a new Resolver instance
func NewResolver(dir Directory, tokens TokenValidator, cfg *config.Config, logger *zap.Logger) *Resolver {
	return &Resolver{
		directory: dir,
		tokens:    tokens,
		cfg:       cfg,
		logger:    logger,
	}
}

// Resolve builds the TenantContext for a request, or fails with a domain
// error the middleware translates. Only the Host header and a validated
// credential ever influence the outcome; client-supplied tenant headers such
// as X-School-ID are deliberately never read.
func (r *Resolver) Resolve(req *http.Request) (*TenantContext, error) {
	ctx := req.Context()

	// A presented credential must validate even when the host alone could
	// resolve the school. Garbage tokens are rejected, never ignored.
	session, err := r.sessionFromRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	// Strategy 1: host subdomain. An unknown subdomain is a terminal
	// not-found, the later strategies must not paper over a typo in the host.
	if sub, ok := SubdomainFromHost(req.Host, r.cfg.Tenancy.BaseDomain); ok {
		record, err := r.directory.BySubdomain(ctx, sub)
		if err != nil {
			return nil, err
		}
		return r.contextFor(record, session, StrategyHost)
	}

	// Strategy 2: school claim of the validated credential.
	if session != nil && session.SchoolID != uuid.Nil {
		record, err := r.directory.ByID(ctx, session.SchoolID)
		if err != nil {
			return nil, err
		}
		return r.contextFor(record, session, StrategyCredential)
	}

	// Strategy 3: development fallback for loopback hosts. Config validation
	// guarantees this can never be enabled in production.
	if r.cfg.Tenancy.DevFallbackEnabled && r.cfg.IsDevelopment() && isLoopbackHost(req.Host) {
		record, err := r.directory.BySubdomain(ctx, r.cfg.Tenancy.DevFallbackSubdomain)
		if err != nil {
			return nil, err
		}
		r.logger.Debug("resolved tenant via development fallback",
			zap.String("subdomain", r.cfg.Tenancy.DevFallbackSubdomain),
			zap.String("host", req.Host))
		return r.contextFor(record, session, StrategyDevFallback)
	}

	r.logger.Debug("no resolution strategy matched",
		zap.String("host", req.Host),
		zap.Bool("authenticated", session != nil))
	return nil, services.ErrMissingTenantContext
}

// sessionFromRequest validates the request credential, if any. No credential
// is fine (nil session); an invalid one is not.
func (r *Resolver) sessionFromRequest(ctx context.Context, req *http.Request) (*UserSession, error) {
	token := auth.TokenFromRequest(req)
	if token == "" {
		return nil, nil
	}

	claims, err := r.tokens.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}

	return &UserSession{
		UserID:      claims.UserID,
		SchoolID:    claims.SchoolID,
		Role:        claims.Role,
		Permissions: claims.Permissions,
	}, nil
}

// contextFor checks operability and session consistency for a resolved
// record, then builds the TenantContext.
func (r *Resolver) contextFor(record *directory.Record, session *UserSession, strategy ResolutionStrategy) (*TenantContext, error) {
	if !record.School.Status.Operable() {
		return nil, SchoolUnavailableError(&record.School)
	}

	// A session scoped to another school must not ride into this one.
	// Platform admin sessions carry no school claim, so there is nothing to
	// conflict with. The details identify the parties for the audit trail;
	// forbidden responses never serialize them.
	if session != nil && session.SchoolID != uuid.Nil && session.SchoolID != record.School.ID {
		r.logger.Warn("rejected cross-tenant credential",
			zap.String("resolved_school_id", record.School.ID.String()),
			zap.String("session_school_id", session.SchoolID.String()),
			zap.String("user_id", session.UserID.String()),
			zap.String("strategy", string(strategy)))
		return nil, services.ErrSchoolMismatch.
			WithDetail("resolved_school_id", record.School.ID).
			WithDetail("session_school_id", session.SchoolID).
			WithDetail("user_id", session.UserID)
	}

	modules := make(map[string]bool, len(record.Modules))
	for _, m := range record.Modules {
		modules[m] = true
	}

	return &TenantContext{
		SchoolID:   record.School.ID,
		SchoolName: record.School.Name,
		Subdomain:  record.School.Subdomain,
		Tier:       record.School.Tier,
		Modules:    modules,
		Session:    session,
		Strategy:   strategy,
		ResolvedAt: time.Now().UTC(),
	}, nil
}

// SchoolUnavailableError maps a non-operable school to the uniform
// school-unavailable error, with the status and client redirect hint
// attached. Shared by the resolver and the public by-subdomain endpoint so
// suspended schools look the same from every path.
func SchoolUnavailableError(school *models.School) error {
	switch school.Status {
	case models.SchoolStatusSuspended:
		return services.ErrSchoolSuspended.
			WithDetail("status", string(school.Status)).
			WithDetail("redirect", "/suspended")
	default:
		return services.ErrSchoolInactive.
			WithDetail("status", string(school.Status)).
			WithDetail("redirect", "/inactive")
	}
}
