package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oneclass/platform/models"
	"github.com/oneclass/platform/repositories"
	"github.com/oneclass/platform/services"
)

// AuditRepository implements the repositories.AuditRepository interface
type AuditRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *DB, logger *zap.Logger) repositories.AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Insert inserts a new audit log entry
func (r *AuditRepository) Insert(ctx context.Context, log *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, school_id, actor_id, action, detail, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		log.ID,
		log.SchoolID,
		log.ActorID,
		log.Action,
		log.Detail,
		log.RequestID,
		log.CreatedAt,
	)

	if err != nil {
		return services.WrapInternal("failed to insert audit log", err)
	}

	r.logger.Debug("audit log inserted",
		zap.String("id", log.ID.String()),
		zap.String("school_id", log.SchoolID.String()),
		zap.String("action", string(log.Action)))
	return nil
}

// GetBySchoolID retrieves audit logs for a school with pagination
func (r *AuditRepository) GetBySchoolID(ctx context.Context, schoolID uuid.UUID, limit, offset int) ([]*models.AuditLog, error) {
	query := `
		SELECT id, school_id, actor_id, action, detail, request_id, created_at
		FROM audit_logs
		WHERE school_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryAuditLogs(ctx, query, schoolID, limit, offset)
}

// GetByAction retrieves audit logs by action type with pagination
func (r *AuditRepository) GetByAction(ctx context.Context, action models.AuditAction, limit, offset int) ([]*models.AuditLog, error) {
	query := `
		SELECT id, school_id, actor_id, action, detail, request_id, created_at
		FROM audit_logs
		WHERE action = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryAuditLogs(ctx, query, action, limit, offset)
}

// GetByDateRange retrieves audit logs within a date range
func (r *AuditRepository) GetByDateRange(ctx context.Context, start, end time.Time, limit, offset int) ([]*models.AuditLog, error) {
	query := `
		SELECT id, school_id, actor_id, action, detail, request_id, created_at
		FROM audit_logs
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	return r.queryAuditLogs(ctx, query, start, end, limit, offset)
}

// queryAuditLogs is a helper method to query multiple audit logs
func (r *AuditRepository) queryAuditLogs(ctx context.Context, query string, args ...interface{}) ([]*models.AuditLog, error) {
	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, services.WrapInternal("failed to query audit logs", err)
	}
	defer rows.Close()

	var logs []*models.AuditLog
	for rows.Next() {
		log := &models.AuditLog{}
		err := rows.Scan(
			&log.ID,
			&log.SchoolID,
			&log.ActorID,
			&log.Action,
			&log.Detail,
			&log.RequestID,
			&log.CreatedAt,
		)
		if err != nil {
			return nil, services.WrapInternal("failed to scan audit log", err)
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, services.WrapInternal("error iterating audit log rows", err)
	}

	return logs, nil
}
