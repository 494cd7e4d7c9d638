package auth

import (
	"net/http"
	"strings"
)

// TokenFromRequest extracts the session token from the Authorization header
// ("Bearer TOKEN") or the session cookie. The header takes precedence when
// both are present. Returns "" when the request carries no credential.
func TokenFromRequest(r *http.Request) string {
	if token := bearerToken(r); token != "" {
		return token
	}
	if cookie, err := r.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// bearerToken extracts the Bearer token from the Authorization header
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
