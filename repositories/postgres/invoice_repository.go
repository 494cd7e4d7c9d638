package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oneclass/platform/models"
	"github.com/oneclass/platform/repositories"
	"github.com/oneclass/platform/services"
)

// InvoiceRepository implements the repositories.InvoiceRepository interface.
// Every statement is scoped by the school id on the request context.
type InvoiceRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *DB, logger *zap.Logger) repositories.InvoiceRepository {
	return &InvoiceRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new invoice into the current school
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	schoolID, err := schoolScope(ctx)
	if err != nil {
		return err
	}
	invoice.SchoolID = schoolID

	query := `
		INSERT INTO invoices (id, school_id, student_id, term, amount_cents, currency, status, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	executor := GetExecutor(ctx, r.db)
	_, err = executor.ExecContext(ctx, query,
		invoice.ID,
		invoice.SchoolID,
		invoice.StudentID,
		invoice.Term,
		invoice.AmountCents,
		invoice.Currency,
		invoice.Status,
		invoice.DueDate,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	)

	if err != nil {
		return services.WrapInternal("failed to create invoice", err)
	}

	r.logger.Debug("invoice created",
		zap.String("id", invoice.ID.String()),
		zap.String("student_id", invoice.StudentID.String()))
	return nil
}

// GetByID retrieves an invoice by ID within the current school
func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	schoolID, err := schoolScope(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, school_id, student_id, term, amount_cents, currency, status, due_date, created_at, updated_at
		FROM invoices
		WHERE school_id = $1 AND id = $2
	`

	executor := GetExecutor(ctx, r.db)
	invoice := &models.Invoice{}

	err = executor.QueryRowContext(ctx, query, schoolID, id).Scan(
		&invoice.ID,
		&invoice.SchoolID,
		&invoice.StudentID,
		&invoice.Term,
		&invoice.AmountCents,
		&invoice.Currency,
		&invoice.Status,
		&invoice.DueDate,
		&invoice.CreatedAt,
		&invoice.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, services.ErrInvoiceNotFound
		}
		return nil, services.WrapInternal("failed to get invoice", err)
	}

	return invoice, nil
}

// List retrieves invoices of the current school with pagination
func (r *InvoiceRepository) List(ctx context.Context, limit, offset int) ([]*models.Invoice, error) {
	schoolID, err := schoolScope(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, school_id, student_id, term, amount_cents, currency, status, due_date, created_at, updated_at
		FROM invoices
		WHERE school_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, schoolID, limit, offset)
	if err != nil {
		return nil, services.WrapInternal("failed to query invoices", err)
	}
	defer rows.Close()

	return scanInvoices(rows)
}

// ListByStudent retrieves invoices for one student of the current school
func (r *InvoiceRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.Invoice, error) {
	schoolID, err := schoolScope(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, school_id, student_id, term, amount_cents, currency, status, due_date, created_at, updated_at
		FROM invoices
		WHERE school_id = $1 AND student_id = $2
		ORDER BY created_at DESC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, schoolID, studentID)
	if err != nil {
		return nil, services.WrapInternal("failed to query student invoices", err)
	}
	defer rows.Close()

	return scanInvoices(rows)
}

// UpdateStatus moves an invoice to a new status within the current school
func (r *InvoiceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.InvoiceStatus) error {
	schoolID, err := schoolScope(ctx)
	if err != nil {
		return err
	}

	query := `
		UPDATE invoices
		SET status = $3,
		    updated_at = $4
		WHERE school_id = $1 AND id = $2
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, schoolID, id, status, time.Now().UTC())
	if err != nil {
		return services.WrapInternal("failed to update invoice status", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return services.WrapInternal("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return services.ErrInvoiceNotFound
	}

	r.logger.Debug("invoice status updated",
		zap.String("id", id.String()),
		zap.String("status", string(status)))
	return nil
}

// scanInvoices drains invoice rows into a slice
func scanInvoices(rows *sql.Rows) ([]*models.Invoice, error) {
	var invoices []*models.Invoice
	for rows.Next() {
		invoice := &models.Invoice{}
		err := rows.Scan(
			&invoice.ID,
			&invoice.SchoolID,
			&invoice.StudentID,
			&invoice.Term,
			&invoice.AmountCents,
			&invoice.Currency,
			&invoice.Status,
			&invoice.DueDate,
			&invoice.CreatedAt,
			&invoice.UpdatedAt,
		)
		if err != nil {
			return nil, services.WrapInternal("failed to scan invoice", err)
		}
		invoices = append(invoices, invoice)
	}

	if err := rows.Err(); err != nil {
		return nil, services.WrapInternal("error iterating invoice rows", err)
	}

	return invoices, nil
}
