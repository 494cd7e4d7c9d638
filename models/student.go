package models

import (
	"time"

	"github.com/google/uuid"
)

// Student represents a learner enrolled at one school. The admission
// number is unique within the school, not across the platform.
type Student struct {
	ID              uuid.UUID `json:"id" db:"id"`
	SchoolID        uuid.UUID `json:"school_id" db:"school_id"`
	FirstName       string    `json:"first_name" db:"first_name"`
	LastName        string    `json:"last_name" db:"last_name"`
	AdmissionNumber string    `json:"admission_number" db:"admission_number"`
	Level           string    `json:"level" db:"level"` // e.g. "Form 2", "Grade 6"
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Student model
func (Student) TableName() string {
	return "students"
}

// NewStudent creates a new Student instance
func NewStudent(schoolID uuid.UUID, firstName, lastName, admissionNumber, level string) *Student {
	now := time.Now()
	return &Student{
		ID:              uuid.New(),
		SchoolID:        schoolID,
		FirstName:       firstName,
		LastName:        lastName,
		AdmissionNumber: admissionNumber,
		Level:           level,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
