// Package middleware wires tenant resolution, credential checks, and the
// request-scoped plumbing between the router and the handlers.
package middleware

import (
	"context"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Response headers describing the resolved tenant. Observability only: they
// are set on the way out and never read on the way in, so a client cannot
// steer resolution by supplying them.
const (
	HeaderRequestID  = "X-Request-ID"
	HeaderSchoolID   = "X-School-ID"
	HeaderSchoolName = "X-School-Name"
	HeaderSchoolTier = "X-School-Tier"
)

// RequestIDFromContext returns the request id the router assigned, or ""
// outside of a request.
func RequestIDFromContext(ctx context.Context) string {
	return chimiddleware.GetReqID(ctx)
}
