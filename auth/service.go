// Package auth issues and validates the platform's session tokens and
// authenticates users against their bcrypt password hashes. Tokens are
// symmetric HS256; the school a user belongs to rides in the school_id claim
// and is the only credential-borne input tenant resolution will trust.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/oneclass/platform/config"
	"github.com/oneclass/platform/models"
	"github.com/oneclass/platform/repositories"
	"github.com/oneclass/platform/services"
)

// claimLeeway absorbs clock skew between token issuers and validators.
const claimLeeway = 30 * time.Second

// Service implements token issuing, token validation, and password login.
type Service struct {
	users      repositories.UserRepository
	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int
	logger     *zap.Logger
}

// NewService creates a new auth service
func NewService(users repositories.UserRepository, cfg config.AuthConfig, logger *zap.Logger) *Service {
	return &Service{
		users:      users,
		secret:     []byte(cfg.JWTSecret),
		tokenTTL:   cfg.TokenTTL,
		bcryptCost: cfg.BcryptCost,
		logger:     logger,
	}
}

// ValidateToken verifies a token's signature and registered claims and
// returns the parsed claims. Expired tokens surface as ErrTokenExpired;
// every other failure is a uniform ErrInvalidToken whose message never says
// what part of the token was wrong.
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*ParsedClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithLeeway(claimLeeway),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, services.ErrTokenExpired
		}
		return nil, services.ErrInvalidToken.WithDetail("cause", err.Error())
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, services.ErrInvalidToken
	}

	return parseClaims(claims)
}

// IssueToken signs a new session token for a user. Platform administrators
// get no school_id claim; everyone else carries exactly their school.
func (s *Service) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		Role:        string(user.Role),
		Permissions: user.Permissions,
	}
	if user.SchoolID != nil {
		claims.SchoolID = user.SchoolID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", services.WrapInternal("failed to sign token", err)
	}

	return signed, nil
}

// TokenTTL returns the configured token lifetime. Handlers use it to set
// cookie expiry consistently with the token itself.
func (s *Service) TokenTTL() time.Duration {
	return s.tokenTTL
}

// Login authenticates an email and password within a school. A nil schoolID
// authenticates platform administrators. Unknown users and wrong passwords
// both come back as ErrInvalidCredentials so responses never reveal whether
// an email exists.
func (s *Service) Login(ctx context.Context, schoolID *uuid.UUID, email, password string) (*models.User, string, error) {
	user, err := s.users.FindByEmail(ctx, schoolID, email)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return nil, "", services.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug("password mismatch",
			zap.String("user_id", user.ID.String()))
		return nil, "", services.ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))
	return user, token, nil
}

// HashPassword hashes a password with the configured bcrypt cost
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", services.WrapInternal("failed to hash password", err)
	}
	return string(hash), nil
}
