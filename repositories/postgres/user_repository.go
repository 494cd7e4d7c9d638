package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/oneclass/platform/models"
	"github.com/oneclass/platform/repositories"
	"github.com/oneclass/platform/services"
)

// UserRepository implements the repositories.UserRepository interface
type UserRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB, logger *zap.Logger) repositories.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, school_id, email, password_hash, role, permissions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		user.ID,
		user.SchoolID,
		user.Email,
		user.PasswordHash,
		user.Role,
		pq.Array(user.Permissions),
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if domainErr := mapUniqueViolation(err); domainErr != nil {
			return domainErr
		}
		return services.WrapInternal("failed to create user", err)
	}

	r.logger.Debug("user created",
		zap.String("id", user.ID.String()),
		zap.String("email", user.Email))
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, school_id, email, password_hash, role, permissions, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	return scanUser(executor.QueryRowContext(ctx, query, id))
}

// FindByEmail retrieves a user by email within a school. A nil school id
// matches platform administrators only.
func (r *UserRepository) FindByEmail(ctx context.Context, schoolID *uuid.UUID, email string) (*models.User, error) {
	executor := GetExecutor(ctx, r.db)

	if schoolID == nil {
		query := `
			SELECT id, school_id, email, password_hash, role, permissions, created_at, updated_at
			FROM users
			WHERE school_id IS NULL AND lower(email) = lower($1)
		`
		return scanUser(executor.QueryRowContext(ctx, query, email))
	}

	query := `
		SELECT id, school_id, email, password_hash, role, permissions, created_at, updated_at
		FROM users
		WHERE school_id = $1 AND lower(email) = lower($2)
	`
	return scanUser(executor.QueryRowContext(ctx, query, *schoolID, email))
}

// ListBySchool retrieves all users of a school, newest first
func (r *UserRepository) ListBySchool(ctx context.Context, schoolID uuid.UUID) ([]*models.User, error) {
	query := `
		SELECT id, school_id, email, password_hash, role, permissions, created_at, updated_at
		FROM users
		WHERE school_id = $1
		ORDER BY created_at DESC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, schoolID)
	if err != nil {
		return nil, services.WrapInternal("failed to query users", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		err := rows.Scan(
			&user.ID,
			&user.SchoolID,
			&user.Email,
			&user.PasswordHash,
			&user.Role,
			pq.Array(&user.Permissions),
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, services.WrapInternal("failed to scan user", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, services.WrapInternal("error iterating user rows", err)
	}

	return users, nil
}

// scanUser scans a single user row, mapping no-rows to ErrUserNotFound
func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.SchoolID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		pq.Array(&user.Permissions),
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, services.ErrUserNotFound
		}
		return nil, services.WrapInternal("failed to get user", err)
	}

	return user, nil
}
