// Package schools owns the school lifecycle: self-service registration,
// subdomain availability, the public directory listing, and the platform
// admin mutations. Every mutation that changes what tenant resolution would
// see also evicts the directory cache.
package schools

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oneclass/platform/auth"
	"github.com/oneclass/platform/models"
	"github.com/oneclass/platform/repositories"
	"github.com/oneclass/platform/services"
	"github.com/oneclass/platform/services/audit"
	"github.com/oneclass/platform/services/directory"
	"github.com/oneclass/platform/tenancy"
)

// RegisterInput is the school self-service registration request
type RegisterInput struct {
	Name          string
	Subdomain     string
	AdminEmail    string
	AdminPassword string

	// ActorID is set when a platform admin onboards the school; nil for
	// self-service registration.
	ActorID   *uuid.UUID
	RequestID string
}

// RegisterResult is the outcome of a successful registration
type RegisterResult struct {
	School *models.School
	Admin  *models.User
	Token  string
}

// SubdomainCheck is the outcome of a subdomain availability check
type SubdomainCheck struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
	Message   string `json:"message"`
}

// SchoolDetail is a school together with its enabled modules
type SchoolDetail struct {
	School  *models.School `json:"school"`
	Modules []string       `json:"modules"`
}

// Service handles school lifecycle operations
type Service struct {
	schools   repositories.SchoolRepository
	users     repositories.UserRepository
	txManager repositories.TransactionManager
	auth      *auth.Service
	directory *directory.Service
	audit     *audit.Service
	logger    *zap.Logger
}

// NewService creates a new schools service
func NewService(
	schools repositories.SchoolRepository,
	users repositories.UserRepository,
	txManager repositories.TransactionManager,
	authSvc *auth.Service,
	dir *directory.Service,
	auditSvc *audit.Service,
	logger *zap.Logger,
) *Service {
	return &Service{
		schools:   schools,
		users:     users,
		txManager: txManager,
		auth:      authSvc,
		directory: dir,
		audit:     auditSvc,
		logger:    logger,
	}
}

// Register creates a school in setup status on the trial tier, its default
// module configuration, and its first school_admin user, all in one
// transaction. Returns a session token for the new admin so onboarding can
// continue without a separate login.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	subdomain := tenancy.NormalizeSubdomain(in.Subdomain)
	if reason, ok := tenancy.ValidateSubdomain(subdomain); !ok {
		return nil, services.ErrInvalidSubdomain.WithDetail("reason", reason)
	}

	// Hash outside the transaction; bcrypt is deliberately slow.
	hash, err := s.auth.HashPassword(in.AdminPassword)
	if err != nil {
		return nil, err
	}

	school := models.NewSchool(in.Name, subdomain)
	admin := models.NewUser(school.ID, in.AdminEmail, hash, models.RoleSchoolAdmin)

	err = s.txManager.InTransaction(ctx, func(txCtx context.Context) error {
		if err := s.schools.Create(txCtx, school); err != nil {
			return err
		}
		if err := s.schools.SetModules(txCtx, school.ID, models.DefaultModules()); err != nil {
			return err
		}
		return s.users.Create(txCtx, admin)
	})
	if err != nil {
		return nil, err
	}

	token, err := s.auth.IssueToken(admin)
	if err != nil {
		return nil, err
	}

	if err := s.audit.RecordSchoolOnboarded(school, in.ActorID, in.RequestID); err != nil {
		s.logger.Warn("failed to record onboarding audit entry",
			zap.Error(err),
			zap.String("school_id", school.ID.String()))
	}

	s.logger.Info("school registered",
		zap.String("school_id", school.ID.String()),
		zap.String("subdomain", school.Subdomain),
		zap.String("name", school.Name))

	return &RegisterResult{School: school, Admin: admin, Token: token}, nil
}

// CheckSubdomain reports whether a subdomain could be registered right now.
// Format problems and availability come back as a result, not an error;
// errors mean the check itself could not run.
func (s *Service) CheckSubdomain(ctx context.Context, subdomain string) (*SubdomainCheck, error) {
	normalized := tenancy.NormalizeSubdomain(subdomain)

	if reason, ok := tenancy.ValidateSubdomain(normalized); !ok {
		return &SubdomainCheck{
			Available: false,
			Reason:    reason,
			Message:   subdomainMessage(reason),
		}, nil
	}

	exists, err := s.schools.SubdomainExists(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if exists {
		return &SubdomainCheck{
			Available: false,
			Reason:    tenancy.ReasonTaken,
			Message:   subdomainMessage(tenancy.ReasonTaken),
		}, nil
	}

	return &SubdomainCheck{
		Available: true,
		Message:   "subdomain is available",
	}, nil
}

// SuggestSubdomains produces up to limit available subdomain candidates for
// a school name, in rank order. Taken candidates are filtered out.
func (s *Service) SuggestSubdomains(ctx context.Context, name string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 5
	}

	available := make([]string, 0, limit)
	for _, candidate := range tenancy.SubdomainCandidates(name) {
		if len(available) >= limit {
			break
		}
		exists, err := s.schools.SubdomainExists(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if !exists {
			available = append(available, candidate)
		}
	}

	return available, nil
}

// ListDirectory lists active schools for the public directory
func (s *Service) ListDirectory(ctx context.Context, limit, offset int) ([]*models.School, error) {
	return s.schools.ListByStatus(ctx, models.SchoolStatusActive, limit, offset)
}

// ListSchools lists schools for platform administration, optionally
// filtered by status
func (s *Service) ListSchools(ctx context.Context, status *models.SchoolStatus, limit, offset int) ([]*models.School, error) {
	if status != nil {
		if !status.Valid() {
			return nil, services.ErrInvalidInput.WithDetail("status", string(*status))
		}
		return s.schools.ListByStatus(ctx, *status, limit, offset)
	}
	return s.schools.List(ctx, limit, offset)
}

// GetSchool retrieves a school and its enabled modules
func (s *Service) GetSchool(ctx context.Context, id uuid.UUID) (*SchoolDetail, error) {
	school, err := s.schools.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	modules, err := s.schools.EnabledModules(ctx, school.ID)
	if err != nil {
		return nil, err
	}

	return &SchoolDetail{School: school, Modules: modules}, nil
}

// ChangeStatus moves a school to a new lifecycle status
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, status models.SchoolStatus, actorID uuid.UUID, requestID string) (*models.School, error) {
	if !status.Valid() {
		return nil, services.ErrInvalidInput.WithDetail("status", string(status))
	}

	school, err := s.schools.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := school.Status
	if from == status {
		return school, nil
	}

	school.Status = status
	school.UpdatedAt = time.Now()
	if err := s.schools.Update(ctx, school); err != nil {
		return nil, err
	}

	s.directory.Invalidate(school.ID, school.Subdomain)
	if err := s.audit.RecordStatusChanged(school, actorID, from, status, requestID); err != nil {
		s.logger.Warn("failed to record status change audit entry",
			zap.Error(err),
			zap.String("school_id", school.ID.String()))
	}

	s.logger.Info("school status changed",
		zap.String("school_id", school.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(status)))

	return school, nil
}

// ChangeTier moves a school to a new subscription tier
func (s *Service) ChangeTier(ctx context.Context, id uuid.UUID, tier models.SubscriptionTier, actorID uuid.UUID, requestID string) (*models.School, error) {
	if !tier.Valid() {
		return nil, services.ErrInvalidInput.WithDetail("tier", string(tier))
	}

	school, err := s.schools.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := school.Tier
	if from == tier {
		return school, nil
	}

	school.Tier = tier
	school.UpdatedAt = time.Now()
	if err := s.schools.Update(ctx, school); err != nil {
		return nil, err
	}

	s.directory.Invalidate(school.ID, school.Subdomain)
	if err := s.audit.RecordTierChanged(school, actorID, from, tier, requestID); err != nil {
		s.logger.Warn("failed to record tier change audit entry",
			zap.Error(err),
			zap.String("school_id", school.ID.String()))
	}

	s.logger.Info("school tier changed",
		zap.String("school_id", school.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(tier)))

	return school, nil
}

// SetModules replaces a school's module configuration. Unknown module names
// are rejected as a whole; nothing is written partially.
func (s *Service) SetModules(ctx context.Context, id uuid.UUID, modules []string, actorID uuid.UUID, requestID string) ([]string, error) {
	deduped := make([]string, 0, len(modules))
	seen := make(map[string]bool, len(modules))
	for _, m := range modules {
		if !models.IsKnownModule(m) {
			return nil, services.ErrInvalidModule.WithDetail("module", m)
		}
		if seen[m] {
			continue
		}
		seen[m] = true
		deduped = append(deduped, m)
	}

	school, err := s.schools.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.schools.SetModules(ctx, school.ID, deduped); err != nil {
		return nil, err
	}

	s.directory.Invalidate(school.ID, school.Subdomain)
	if err := s.audit.RecordModulesChanged(school, actorID, deduped, requestID); err != nil {
		s.logger.Warn("failed to record module change audit entry",
			zap.Error(err),
			zap.String("school_id", school.ID.String()))
	}

	s.logger.Info("school modules changed",
		zap.String("school_id", school.ID.String()),
		zap.Strings("modules", deduped))

	return deduped, nil
}

// subdomainMessage maps a validation reason code to a human readable message
func subdomainMessage(reason string) string {
	switch reason {
	case tenancy.ReasonTooShort:
		return "subdomain must be at least 3 characters"
	case tenancy.ReasonTooLong:
		return "subdomain must be at most 20 characters"
	case tenancy.ReasonInvalidFormat:
		return "subdomain may only contain lowercase letters, digits, and hyphens"
	case tenancy.ReasonReserved:
		return "this subdomain is reserved"
	case tenancy.ReasonTaken:
		return "this subdomain is already registered"
	default:
		return "subdomain is not available"
	}
}
