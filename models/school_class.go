package models

import (
	"time"

	"github.com/google/uuid"
)

// SchoolClass represents a teaching class within one school
type SchoolClass struct {
	ID          uuid.UUID `json:"id" db:"id"`
	SchoolID    uuid.UUID `json:"school_id" db:"school_id"`
	Name        string    `json:"name" db:"name"` // e.g. "2 Blue"
	Level       string    `json:"level" db:"level"`
	TeacherName string    `json:"teacher_name" db:"teacher_name"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the SchoolClass model
func (SchoolClass) TableName() string {
	return "school_classes"
}

// NewSchoolClass creates a new SchoolClass instance
func NewSchoolClass(schoolID uuid.UUID, name, level, teacherName string) *SchoolClass {
	now := time.Now()
	return &SchoolClass{
		ID:          uuid.New(),
		SchoolID:    schoolID,
		Name:        name,
		Level:       level,
		TeacherName: teacherName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
