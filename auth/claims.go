package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/oneclass/platform/models"
	"github.com/oneclass/platform/services"
)

// TokenCookie is the cookie carrying the session token for browser clients.
// The Authorization header takes precedence when both are present.
const TokenCookie = "oneclass_token"

// Claims is the raw token payload issued at login and school registration.
type Claims struct {
	jwt.RegisteredClaims
	SchoolID    string   `json:"school_id,omitempty"` // absent for platform administrators
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
}

// ParsedClaims is a validated, type-converted view of Claims.
type ParsedClaims struct {
	UserID      uuid.UUID
	SchoolID    uuid.UUID // uuid.Nil for platform administrators
	Role        string
	Permissions []string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// parseClaims converts Claims to ParsedClaims with proper type conversions.
// Structural problems surface as ErrInvalidToken; the detail stays out of
// the message so responses never reveal which part of the token failed.
func parseClaims(claims *Claims) (*ParsedClaims, error) {
	if claims.Subject == "" {
		return nil, services.ErrInvalidToken.WithDetail("cause", "missing sub")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, services.ErrInvalidToken.WithDetail("cause", fmt.Sprintf("invalid sub: %v", err))
	}

	schoolID := uuid.Nil
	if claims.SchoolID != "" {
		schoolID, err = uuid.Parse(claims.SchoolID)
		if err != nil {
			return nil, services.ErrInvalidToken.WithDetail("cause", fmt.Sprintf("invalid school_id: %v", err))
		}
	}

	if claims.Role == "" {
		return nil, services.ErrInvalidToken.WithDetail("cause", "missing role")
	}

	parsed := &ParsedClaims{
		UserID:      userID,
		SchoolID:    schoolID,
		Role:        claims.Role,
		Permissions: claims.Permissions,
	}
	if claims.IssuedAt != nil {
		parsed.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		parsed.ExpiresAt = claims.ExpiresAt.Time
	}

	return parsed, nil
}

// IsPlatformAdmin reports whether the claims carry the platform operator role.
func (p *ParsedClaims) IsPlatformAdmin() bool {
	return p.Role == string(models.RolePlatformAdmin)
}
