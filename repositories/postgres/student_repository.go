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

// StudentRepository implements the repositories.StudentRepository interface.
// Every statement is scoped by the school id on the request context.
type StudentRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *DB, logger *zap.Logger) repositories.StudentRepository {
	return &StudentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new student into the current school
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	schoolID, err := schoolScope(ctx)
	if err != nil {
		return err
	}
	student.SchoolID = schoolID

	query := `
		INSERT INTO students (id, school_id, first_name, last_name, admission_number, level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	executor := GetExecutor(ctx, r.db)
	_, err = executor.ExecContext(ctx, query,
		student.ID,
		student.SchoolID,
		student.FirstName,
		student.LastName,
		student.AdmissionNumber,
		student.Level,
		student.CreatedAt,
		student.UpdatedAt,
	)

	if err != nil {
		if domainErr := mapUniqueViolation(err); domainErr != nil {
			return domainErr
		}
		return services.WrapInternal("failed to create student", err)
	}

	r.logger.Debug("student created",
		zap.String("id", student.ID.String()),
		zap.String("school_id", schoolID.String()))
	return nil
}

// GetByID retrieves a student by ID within the current school
func (r *StudentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	schoolID, err := schoolScope(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, school_id, first_name, last_name, admission_number, level, created_at, updated_at
		FROM students
		WHERE school_id = $1 AND id = $2
	`

	executor := GetExecutor(ctx, r.db)
	student := &models.Student{}

	err = executor.QueryRowContext(ctx, query, schoolID, id).Scan(
		&student.ID,
		&student.SchoolID,
		&student.FirstName,
		&student.LastName,
		&student.AdmissionNumber,
		&student.Level,
		&student.CreatedAt,
		&student.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, services.ErrStudentNotFound
		}
		return nil, services.WrapInternal("failed to get student", err)
	}

	return student, nil
}

// List retrieves students of the current school with pagination
func (r *StudentRepository) List(ctx context.Context, limit, offset int) ([]*models.Student, error) {
	schoolID, err := schoolScope(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, school_id, first_name, last_name, admission_number, level, created_at, updated_at
		FROM students
		WHERE school_id = $1
		ORDER BY last_name, first_name
		LIMIT $2 OFFSET $3
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, schoolID, limit, offset)
	if err != nil {
		return nil, services.WrapInternal("failed to query students", err)
	}
	defer rows.Close()

	var students []*models.Student
	for rows.Next() {
		student := &models.Student{}
		err := rows.Scan(
			&student.ID,
			&student.SchoolID,
			&student.FirstName,
			&student.LastName,
			&student.AdmissionNumber,
			&student.Level,
			&student.CreatedAt,
			&student.UpdatedAt,
		)
		if err != nil {
			return nil, services.WrapInternal("failed to scan student", err)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, services.WrapInternal("error iterating student rows", err)
	}

	return students, nil
}

// Update persists changes to a student within the current school
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	schoolID, err := schoolScope(ctx)
	if err != nil {
		return err
	}

	query := `
		UPDATE students
		SET first_name = $3,
		    last_name = $4,
		    admission_number = $5,
		    level = $6,
		    updated_at = $7
		WHERE school_id = $1 AND id = $2
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		schoolID,
		student.ID,
		student.FirstName,
		student.LastName,
		student.AdmissionNumber,
		student.Level,
		student.UpdatedAt,
	)

	if err != nil {
		if domainErr := mapUniqueViolation(err); domainErr != nil {
			return domainErr
		}
		return services.WrapInternal("failed to update student", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return services.WrapInternal("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return services.ErrStudentNotFound
	}

	r.logger.Debug("student updated", zap.String("id", student.ID.String()))
	return nil
}

// Delete removes a student from the current school
func (r *StudentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	schoolID, err := schoolScope(ctx)
	if err != nil {
		return err
	}

	query := `DELETE FROM students WHERE school_id = $1 AND id = $2`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, schoolID, id)
	if err != nil {
		return services.WrapInternal("failed to delete student", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return services.WrapInternal("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return services.ErrStudentNotFound
	}

	r.logger.Debug("student deleted", zap.String("id", id.String()))
	return nil
}
