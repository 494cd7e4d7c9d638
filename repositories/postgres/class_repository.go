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

// ClassRepository implements the repositories.ClassRepository interface.
// Every statement is scoped by the school id on the request context.
type ClassRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewClassRepository creates a new class repository
func NewClassRepository(db *DB, logger *zap.Logger) repositories.ClassRepository {
	return &ClassRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new class into the current school
func (r *ClassRepository) Create(ctx context.Context, class *models.SchoolClass) error {
	schoolID, err := schoolScope(ctx)
	if err != nil {
		return err
	}
	class.SchoolID = schoolID

	query := `
		INSERT INTO school_classes (id, school_id, name, level, teacher_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	executor := GetExecutor(ctx, r.db)
	_, err = executor.ExecContext(ctx, query,
		class.ID,
		class.SchoolID,
		class.Name,
		class.Level,
		class.TeacherName,
		class.CreatedAt,
		class.UpdatedAt,
	)

	if err != nil {
		if domainErr := mapUniqueViolation(err); domainErr != nil {
			return domainErr
		}
		return services.WrapInternal("failed to create class", err)
	}

	r.logger.Debug("class created",
		zap.String("id", class.ID.String()),
		zap.String("name", class.Name))
	return nil
}

// GetByID retrieves a class by ID within the current school
func (r *ClassRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SchoolClass, error) {
	schoolID, err := schoolScope(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, school_id, name, level, teacher_name, created_at, updated_at
		FROM school_classes
		WHERE school_id = $1 AND id = $2
	`

	executor := GetExecutor(ctx, r.db)
	class := &models.SchoolClass{}

	err = executor.QueryRowContext(ctx, query, schoolID, id).Scan(
		&class.ID,
		&class.SchoolID,
		&class.Name,
		&class.Level,
		&class.TeacherName,
		&class.CreatedAt,
		&class.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, services.ErrClassNotFound
		}
		return nil, services.WrapInternal("failed to get class", err)
	}

	return class, nil
}

// List retrieves classes of the current school with pagination
func (r *ClassRepository) List(ctx context.Context, limit, offset int) ([]*models.SchoolClass, error) {
	schoolID, err := schoolScope(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, school_id, name, level, teacher_name, created_at, updated_at
		FROM school_classes
		WHERE school_id = $1
		ORDER BY name
		LIMIT $2 OFFSET $3
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, schoolID, limit, offset)
	if err != nil {
		return nil, services.WrapInternal("failed to query classes", err)
	}
	defer rows.Close()

	var classes []*models.SchoolClass
	for rows.Next() {
		class := &models.SchoolClass{}
		err := rows.Scan(
			&class.ID,
			&class.SchoolID,
			&class.Name,
			&class.Level,
			&class.TeacherName,
			&class.CreatedAt,
			&class.UpdatedAt,
		)
		if err != nil {
			return nil, services.WrapInternal("failed to scan class", err)
		}
		classes = append(classes, class)
	}

	if err := rows.Err(); err != nil {
		return nil, services.WrapInternal("error iterating class rows", err)
	}

	return classes, nil
}

// Update persists changes to a class within the current school
func (r *ClassRepository) Update(ctx context.Context, class *models.SchoolClass) error {
	schoolID, err := schoolScope(ctx)
	if err != nil {
		return err
	}

	query := `
		UPDATE school_classes
		SET name = $3,
		    level = $4,
		    teacher_name = $5,
		    updated_at = $6
		WHERE school_id = $1 AND id = $2
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		schoolID,
		class.ID,
		class.Name,
		class.Level,
		class.TeacherName,
		class.UpdatedAt,
	)

	if err != nil {
		if domainErr := mapUniqueViolation(err); domainErr != nil {
			return domainErr
		}
		return services.WrapInternal("failed to update class", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return services.WrapInternal("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return services.ErrClassNotFound
	}

	r.logger.Debug("class updated", zap.String("id", class.ID.String()))
	return nil
}

// Delete removes a class from the current school
func (r *ClassRepository) Delete(ctx context.Context, id uuid.UUID) error {
	schoolID, err := schoolScope(ctx)
	if err != nil {
		return err
	}

	query := `DELETE FROM school_classes WHERE school_id = $1 AND id = $2`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, schoolID, id)
	if err != nil {
		return services.WrapInternal("failed to delete class", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return services.WrapInternal("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return services.ErrClassNotFound
	}

	r.logger.Debug("class deleted", zap.String("id", id.String()))
	return nil
}
