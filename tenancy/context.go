// Package tenancy resolves which school a request belongs to and carries
// that identity on the request context. Every tenant-scoped read in the
// system flows through the context published here.
package tenancy

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/oneclass/platform/models"
)

// ResolutionStrategy identifies which resolution path produced a TenantContext.
type ResolutionStrategy string

const (
	// StrategyHost resolved the school from the request Host subdomain.
	StrategyHost ResolutionStrategy = "host"

	// StrategyCredential resolved the school from the school_id claim of a
	// validated bearer token.
	StrategyCredential ResolutionStrategy = "credential"

	// StrategyDevFallback resolved the configured development school for a
	// loopback host. Never active in production.
	StrategyDevFallback ResolutionStrategy = "dev_fallback"
)

// UserSession is the authenticated caller derived from a validated credential.
// It is owned by a single request and never shared or persisted.
type UserSession struct {
	UserID      uuid.UUID
	SchoolID    uuid.UUID // uuid.Nil for platform administrators
	Role        string
	Permissions []string
}

// IsPlatformAdmin reports whether the session belongs to a platform operator.
func (s *UserSession) IsPlatformAdmin() bool {
	return s.Role == string(models.RolePlatformAdmin)
}

// TenantContext is the per-request school identity. It is built exactly once
// by the Resolver, treated as immutable once published on the request
// context, and discarded when the request ends.
type TenantContext struct {
	SchoolID   uuid.UUID
	SchoolName string
	Subdomain  string
	Tier       models.SubscriptionTier
	Modules    map[string]bool
	Session    *UserSession // nil when the request is unauthenticated
	Strategy   ResolutionStrategy
	RequestID  string
	ResolvedAt time.Time
}

// ModuleEnabled reports whether the named module is enabled for the school.
func (tc *TenantContext) ModuleEnabled(module string) bool {
	return tc.Modules[module]
}

// Authenticated reports whether a user session is attached.
func (tc *TenantContext) Authenticated() bool {
	return tc.Session != nil
}

// Context key type to avoid collisions
type contextKey string

const (
	tenantContextKey contextKey = "tenant_context"
	sessionKey       contextKey = "user_session"
)

// WithTenant returns a context carrying the resolved tenant.
func WithTenant(ctx context.Context, tc *TenantContext) context.Context {
	return context.WithValue(ctx, tenantContextKey, tc)
}

// WithSession returns a context carrying the authenticated session. Platform
// admin routes publish a session without any TenantContext; tenant routes
// publish both.
func WithSession(ctx context.Context, s *UserSession) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext retrieves the resolved tenant from the context.
func FromContext(ctx context.Context) (*TenantContext, bool) {
	tc, ok := ctx.Value(tenantContextKey).(*TenantContext)
	return tc, ok && tc != nil
}

// SchoolIDFromContext retrieves the resolved school id from the context.
// Repositories use this as their only source of tenant scope; callers must
// treat ok=false as a hard failure, never as "query everything".
func SchoolIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	tc, ok := FromContext(ctx)
	if !ok || tc.SchoolID == uuid.Nil {
		return uuid.Nil, false
	}
	return tc.SchoolID, true
}

// SessionFromContext retrieves the authenticated session, or nil when the
// request is unauthenticated. Falls back to the resolved tenant's session so
// either publication path works.
func SessionFromContext(ctx context.Context) *UserSession {
	if s, ok := ctx.Value(sessionKey).(*UserSession); ok && s != nil {
		return s
	}
	tc, ok := FromContext(ctx)
	if !ok {
		return nil
	}
	return tc.Session
}
