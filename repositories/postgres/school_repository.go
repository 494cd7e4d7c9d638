package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oneclass/platform/models"
	"github.com/oneclass/platform/repositories"
	"github.com/oneclass/platform/services"
)

// SchoolRepository implements the repositories.SchoolRepository interface
type SchoolRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewSchoolRepository creates a new school repository
func NewSchoolRepository(db *DB, logger *zap.Logger) repositories.SchoolRepository {
	return &SchoolRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new school
func (r *SchoolRepository) Create(ctx context.Context, school *models.School) error {
	query := `
		INSERT INTO schools (id, name, subdomain, status, tier, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		school.ID,
		school.Name,
		school.Subdomain,
		school.Status,
		school.Tier,
		school.CreatedAt,
		school.UpdatedAt,
	)

	if err != nil {
		if domainErr := mapUniqueViolation(err); domainErr != nil {
			return domainErr
		}
		return services.WrapInternal("failed to create school", err)
	}

	r.logger.Debug("school created",
		zap.String("id", school.ID.String()),
		zap.String("subdomain", school.Subdomain))
	return nil
}

// GetByID retrieves a school by ID
func (r *SchoolRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.School, error) {
	query := `
		SELECT id, name, subdomain, status, tier, created_at, updated_at
		FROM schools
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	school := &models.School{}

	err := executor.QueryRowContext(ctx, query, id).Scan(
		&school.ID,
		&school.Name,
		&school.Subdomain,
		&school.Status,
		&school.Tier,
		&school.CreatedAt,
		&school.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, services.ErrSchoolNotFound
		}
		return nil, services.WrapInternal("failed to get school", err)
	}

	return school, nil
}

// GetBySubdomain retrieves a school by subdomain, case-insensitively
func (r *SchoolRepository) GetBySubdomain(ctx context.Context, subdomain string) (*models.School, error) {
	query := `
		SELECT id, name, subdomain, status, tier, created_at, updated_at
		FROM schools
		WHERE lower(subdomain) = lower($1)
	`

	executor := GetExecutor(ctx, r.db)
	school := &models.School{}

	err := executor.QueryRowContext(ctx, query, subdomain).Scan(
		&school.ID,
		&school.Name,
		&school.Subdomain,
		&school.Status,
		&school.Tier,
		&school.CreatedAt,
		&school.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, services.ErrSchoolNotFound
		}
		return nil, services.WrapInternal("failed to get school by subdomain", err)
	}

	return school, nil
}

// SubdomainExists reports whether a subdomain is already registered
func (r *SchoolRepository) SubdomainExists(ctx context.Context, subdomain string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM schools WHERE lower(subdomain) = lower($1))`

	executor := GetExecutor(ctx, r.db)
	var exists bool
	if err := executor.QueryRowContext(ctx, query, subdomain).Scan(&exists); err != nil {
		return false, services.WrapInternal("failed to check subdomain", err)
	}

	return exists, nil
}

// List retrieves schools with pagination, newest first
func (r *SchoolRepository) List(ctx context.Context, limit, offset int) ([]*models.School, error) {
	query := `
		SELECT id, name, subdomain, status, tier, created_at, updated_at
		FROM schools
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, services.WrapInternal("failed to query schools", err)
	}
	defer rows.Close()

	return scanSchools(rows)
}

// ListByStatus retrieves schools in a given status, newest first
func (r *SchoolRepository) ListByStatus(ctx context.Context, status models.SchoolStatus, limit, offset int) ([]*models.School, error) {
	query := `
		SELECT id, name, subdomain, status, tier, created_at, updated_at
		FROM schools
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, status, limit, offset)
	if err != nil {
		return nil, services.WrapInternal("failed to query schools by status", err)
	}
	defer rows.Close()

	return scanSchools(rows)
}

// Update persists name, status, and tier changes
func (r *SchoolRepository) Update(ctx context.Context, school *models.School) error {
	query := `
		UPDATE schools
		SET name = $2,
		    status = $3,
		    tier = $4,
		    updated_at = $5
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		school.ID,
		school.Name,
		school.Status,
		school.Tier,
		school.UpdatedAt,
	)

	if err != nil {
		return services.WrapInternal("failed to update school", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return services.WrapInternal("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return services.ErrSchoolNotFound
	}

	r.logger.Debug("school updated",
		zap.String("id", school.ID.String()),
		zap.String("status", string(school.Status)))
	return nil
}

// EnabledModules returns the enabled module names for a school
func (r *SchoolRepository) EnabledModules(ctx context.Context, schoolID uuid.UUID) ([]string, error) {
	query := `
		SELECT module
		FROM school_modules
		WHERE school_id = $1 AND enabled
		ORDER BY module
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, schoolID)
	if err != nil {
		return nil, services.WrapInternal("failed to query school modules", err)
	}
	defer rows.Close()

	var modules []string
	for rows.Next() {
		var module string
		if err := rows.Scan(&module); err != nil {
			return nil, services.WrapInternal("failed to scan module", err)
		}
		modules = append(modules, module)
	}

	if err := rows.Err(); err != nil {
		return nil, services.WrapInternal("error iterating module rows", err)
	}

	return modules, nil
}

// ModulesConfigured reports whether any module configuration rows exist for
// the school, enabled or not. Distinguishes "never configured" from
// "everything disabled on purpose".
func (r *SchoolRepository) ModulesConfigured(ctx context.Context, schoolID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM school_modules WHERE school_id = $1)`

	executor := GetExecutor(ctx, r.db)
	var configured bool
	if err := executor.QueryRowContext(ctx, query, schoolID).Scan(&configured); err != nil {
		return false, services.WrapInternal("failed to check module configuration", err)
	}

	return configured, nil
}

// SetModules replaces the school's module configuration with the given
// enabled set. A row is written for every known module so an explicitly
// empty set still leaves configuration rows behind.
func (r *SchoolRepository) SetModules(ctx context.Context, schoolID uuid.UUID, modules []string) error {
	executor := GetExecutor(ctx, r.db)

	if _, err := executor.ExecContext(ctx, `DELETE FROM school_modules WHERE school_id = $1`, schoolID); err != nil {
		return services.WrapInternal("failed to clear school modules", err)
	}

	enabled := make(map[string]bool, len(modules))
	for _, module := range modules {
		enabled[module] = true
	}

	query := `INSERT INTO school_modules (school_id, module, enabled) VALUES ($1, $2, $3)`
	for _, module := range models.KnownModules {
		if _, err := executor.ExecContext(ctx, query, schoolID, module, enabled[module]); err != nil {
			return services.WrapInternal("failed to set school module", err)
		}
	}

	r.logger.Debug("school modules set",
		zap.String("school_id", schoolID.String()),
		zap.Strings("modules", modules))
	return nil
}

// scanSchools drains school rows into a slice
func scanSchools(rows *sql.Rows) ([]*models.School, error) {
	var schools []*models.School
	for rows.Next() {
		school := &models.School{}
		err := rows.Scan(
			&school.ID,
			&school.Name,
			&school.Subdomain,
			&school.Status,
			&school.Tier,
			&school.CreatedAt,
			&school.UpdatedAt,
		)
		if err != nil {
			return nil, services.WrapInternal("failed to scan school", err)
		}
		schools = append(schools, school)
	}

	if err := rows.Err(); err != nil {
		return nil, services.WrapInternal("error iterating school rows", err)
	}

	return schools, nil
}
