package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole represents the role of a user. The vocabulary is closed:
// anything outside it is rejected at validation time.
type UserRole string

const (
	RolePlatformAdmin UserRole = "platform_admin"
	RoleSchoolAdmin   UserRole = "school_admin"
	RoleTeacher       UserRole = "teacher"
	RoleBursar        UserRole = "bursar"
	RoleClerk         UserRole = "clerk"
)

// Valid returns true for a known role value
func (r UserRole) Valid() bool {
	switch r {
	case RolePlatformAdmin, RoleSchoolAdmin, RoleTeacher, RoleBursar, RoleClerk:
		return true
	}
	return false
}

// User represents an account on the platform. School staff belong to
// exactly one school; platform admins have no school (SchoolID nil).
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	SchoolID     *uuid.UUID `json:"school_id,omitempty" db:"school_id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"` // bcrypt, never serialized
	Role         UserRole   `json:"role" db:"role"`
	Permissions  []string   `json:"permissions" db:"permissions"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new User instance belonging to a school
func NewUser(schoolID uuid.UUID, email, passwordHash string, role UserRole) *User {
	now := time.Now()
	return &User{
		ID:           uuid.New(),
		SchoolID:     &schoolID,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Permissions:  []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewPlatformAdmin creates a new platform administrator with no school
func NewPlatformAdmin(email, passwordHash string) *User {
	now := time.Now()
	return &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         RolePlatformAdmin,
		Permissions:  []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsPlatformAdmin returns true if the user administers the platform itself
func (u *User) IsPlatformAdmin() bool {
	return u.Role == RolePlatformAdmin
}

// SchoolIDOrNil returns the user's school id, or uuid.Nil for platform admins
func (u *User) SchoolIDOrNil() uuid.UUID {
	if u.SchoolID == nil {
		return uuid.Nil
	}
	return *u.SchoolID
}
