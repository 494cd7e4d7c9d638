package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/oneclass/platform/models"
)

// TransactionManager manages database transactions. Repositories pick the
// transaction up from the context, so code inside InTransaction calls them
// exactly as it would outside one.
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction.
	// Automatically commits if the function succeeds, rolls back on error.
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error
}

// SchoolRepository handles school directory records and their module
// configuration. Lookups are platform-level: they take explicit identifiers
// rather than reading tenant scope from the context, because they are what
// tenant resolution itself is built on.
type SchoolRepository interface {
	// Create inserts a new school
	Create(ctx context.Context, school *models.School) error

	// GetByID retrieves a school by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.School, error)

	// GetBySubdomain retrieves a school by subdomain, case-insensitively
	GetBySubdomain(ctx context.Context, subdomain string) (*models.School, error)

	// SubdomainExists reports whether a subdomain is already registered
	SubdomainExists(ctx context.Context, subdomain string) (bool, error)

	// List retrieves schools with pagination, newest first
	List(ctx context.Context, limit, offset int) ([]*models.School, error)

	// ListByStatus retrieves schools in a given status, newest first
	ListByStatus(ctx context.Context, status models.SchoolStatus, limit, offset int) ([]*models.School, error)

	// Update persists name, status, and tier changes
	Update(ctx context.Context, school *models.School) error

	// EnabledModules returns the enabled module names for a school
	EnabledModules(ctx context.Context, schoolID uuid.UUID) ([]string, error)

	// ModulesConfigured reports whether any module configuration rows exist
	// for the school, enabled or not
	ModulesConfigured(ctx context.Context, schoolID uuid.UUID) (bool, error)

	// SetModules replaces the school's module configuration
	SetModules(ctx context.Context, schoolID uuid.UUID, modules []string) error
}

// UserRepository handles user accounts. Email lookups are qualified by
// school because the same address may exist at different schools; a nil
// school id matches platform administrators only.
type UserRepository interface {
	// Create inserts a new user
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// FindByEmail retrieves a user by email within a school.
	FindByEmail(ctx context.Context, schoolID *uuid.UUID, email string) (*models.User, error)

	// ListBySchool retrieves all users of a school, newest first
	ListBySchool(ctx context.Context, schoolID uuid.UUID) ([]*models.User, error)
}

// StudentRepository handles student records. All operations are tenant
// scoped: the school id comes exclusively from the request context and a
// missing scope is an error, never an unscoped query.
type StudentRepository interface {
	// Create inserts a new student into the current school
	Create(ctx context.Context, student *models.Student) error

	// GetByID retrieves a student by ID within the current school
	GetByID(ctx context.Context, id uuid.UUID) (*models.Student, error)

	// List retrieves students of the current school with pagination
	List(ctx context.Context, limit, offset int) ([]*models.Student, error)

	// Update persists changes to a student within the current school
	Update(ctx context.Context, student *models.Student) error

	// Delete removes a student from the current school
	Delete(ctx context.Context, id uuid.UUID) error
}

// InvoiceRepository handles fee invoices. Tenant scoped like StudentRepository.
type InvoiceRepository interface {
	// Create inserts a new invoice into the current school
	Create(ctx context.Context, invoice *models.Invoice) error

	// GetByID retrieves an invoice by ID within the current school
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)

	// List retrieves invoices of the current school with pagination
	List(ctx context.Context, limit, offset int) ([]*models.Invoice, error)

	// ListByStudent retrieves invoices for one student of the current school
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.Invoice, error)

	// UpdateStatus moves an invoice to a new status within the current school
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.InvoiceStatus) error
}

// ClassRepository handles class records. Tenant scoped like StudentRepository.
type ClassRepository interface {
	// Create inserts a new class into the current school
	Create(ctx context.Context, class *models.SchoolClass) error

	// GetByID retrieves a class by ID within the current school
	GetByID(ctx context.Context, id uuid.UUID) (*models.SchoolClass, error)

	// List retrieves classes of the current school with pagination
	List(ctx context.Context, limit, offset int) ([]*models.SchoolClass, error)

	// Update persists changes to a class within the current school
	Update(ctx context.Context, class *models.SchoolClass) error

	// Delete removes a class from the current school
	Delete(ctx context.Context, id uuid.UUID) error
}

// AuditRepository handles the platform audit trail. Platform-level: entries
// span schools, so reads take explicit school ids.
type AuditRepository interface {
	// Insert inserts a new audit log entry
	Insert(ctx context.Context, log *models.AuditLog) error

	// GetBySchoolID retrieves audit logs for a school with pagination
	GetBySchoolID(ctx context.Context, schoolID uuid.UUID, limit, offset int) ([]*models.AuditLog, error)

	// GetByAction retrieves audit logs by action type with pagination
	GetByAction(ctx context.Context, action models.AuditAction, limit, offset int) ([]*models.AuditLog, error)

	// GetByDateRange retrieves audit logs within a date range
	GetByDateRange(ctx context.Context, start, end time.Time, limit, offset int) ([]*models.AuditLog, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Schools  SchoolRepository
	Users    UserRepository
	Students StudentRepository
	Invoices InvoiceRepository
	Classes  ClassRepository
	Audit    AuditRepository
}
