package models

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceStatus represents the payment state of a fee invoice
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusVoid    InvoiceStatus = "void"
)

// Valid returns true for a known invoice status
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusVoid:
		return true
	}
	return false
}

// Invoice represents a school-fee invoice issued to a student for a term.
// Amounts are stored in cents to avoid float arithmetic on money.
type Invoice struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	SchoolID    uuid.UUID     `json:"school_id" db:"school_id"`
	StudentID   uuid.UUID     `json:"student_id" db:"student_id"`
	Term        string        `json:"term" db:"term"` // e.g. "2026-T1"
	AmountCents int64         `json:"amount_cents" db:"amount_cents"`
	Currency    string        `json:"currency" db:"currency"`
	Status      InvoiceStatus `json:"status" db:"status"`
	DueDate     time.Time     `json:"due_date" db:"due_date"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates a new pending Invoice instance
func NewInvoice(schoolID, studentID uuid.UUID, term string, amountCents int64, currency string, dueDate time.Time) *Invoice {
	if currency == "" {
		currency = "USD"
	}
	now := time.Now()
	return &Invoice{
		ID:          uuid.New(),
		SchoolID:    schoolID,
		StudentID:   studentID,
		Term:        term,
		AmountCents: amountCents,
		Currency:    currency,
		Status:      InvoiceStatusPending,
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
