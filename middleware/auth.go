package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/oneclass/platform/services"
	"github.com/oneclass/platform/tenancy"
	"github.com/oneclass/platform/utils"
)

// RequireSession rejects requests that carry no authenticated session. The
// tenancy pipeline deliberately lets anonymous requests through to resolved
// schools; routes that need a user opt in with this.
func RequireSession(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tenancy.SessionFromContext(r.Context()) == nil {
				logger.Warn("unauthenticated request to protected route",
					zap.String("request_id", RequestIDFromContext(r.Context())),
					zap.String("path", r.URL.Path))
				_ = utils.WriteDomainError(w, r, services.ErrAuthRequired)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
