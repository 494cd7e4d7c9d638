package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of platform action being audited
type AuditAction string

const (
	AuditActionSchoolOnboarded    AuditAction = "school_onboarded"
	AuditActionStatusChanged      AuditAction = "school_status_changed"
	AuditActionTierChanged        AuditAction = "school_tier_changed"
	AuditActionModulesChanged     AuditAction = "school_modules_changed"
	AuditActionUserCreated        AuditAction = "user_created"
	AuditActionCrossTenantBlocked AuditAction = "cross_tenant_blocked"
)

// AuditLog represents one entry in the platform audit trail. Every
// platform-admin mutation of a school record writes one.
type AuditLog struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	SchoolID  uuid.UUID       `json:"school_id" db:"school_id"`
	ActorID   *uuid.UUID      `json:"actor_id,omitempty" db:"actor_id"` // nil for self-service registration
	Action    AuditAction     `json:"action" db:"action"`
	Detail    json.RawMessage `json:"detail" db:"detail"` // JSONB for flexible metadata
	RequestID string          `json:"request_id" db:"request_id"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}

// NewAuditLog creates a new AuditLog instance
func NewAuditLog(schoolID uuid.UUID, action AuditAction) *AuditLog {
	return &AuditLog{
		ID:        uuid.New(),
		SchoolID:  schoolID,
		Action:    action,
		CreatedAt: time.Now(),
	}
}

// WithActor sets the acting user
func (a *AuditLog) WithActor(actorID uuid.UUID) *AuditLog {
	a.ActorID = &actorID
	return a
}

// WithDetail attaches structured detail to the entry
func (a *AuditLog) WithDetail(detail interface{}) *AuditLog {
	if data, err := json.Marshal(detail); err == nil {
		a.Detail = data
	}
	return a
}

// WithRequestID records the originating request trace id
func (a *AuditLog) WithRequestID(requestID string) *AuditLog {
	a.RequestID = requestID
	return a
}
