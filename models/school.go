package models

import (
	"time"

	"github.com/google/uuid"
)

// SchoolStatus represents the lifecycle status of a school account.
// Schools are never deleted; they move between statuses instead.
type SchoolStatus string

const (
	SchoolStatusActive    SchoolStatus = "active"
	SchoolStatusSetup     SchoolStatus = "setup"
	SchoolStatusSuspended SchoolStatus = "suspended"
	SchoolStatusInactive  SchoolStatus = "inactive"
)

// Operable returns true when end users may reach the school through
// tenant resolution (active or still completing onboarding).
func (s SchoolStatus) Operable() bool {
	return s == SchoolStatusActive || s == SchoolStatusSetup
}

// Valid returns true for a known status value
func (s SchoolStatus) Valid() bool {
	switch s {
	case SchoolStatusActive, SchoolStatusSetup, SchoolStatusSuspended, SchoolStatusInactive:
		return true
	}
	return false
}

// SubscriptionTier represents a school's subscription level, ordered
// from trial (lowest) to enterprise (highest).
type SubscriptionTier string

const (
	TierTrial        SubscriptionTier = "trial"
	TierBasic        SubscriptionTier = "basic"
	TierProfessional SubscriptionTier = "professional"
	TierEnterprise   SubscriptionTier = "enterprise"
)

// tierRank orders tiers for comparisons
var tierRank = map[SubscriptionTier]int{
	TierTrial:        0,
	TierBasic:        1,
	TierProfessional: 2,
	TierEnterprise:   3,
}

// AtLeast returns true if the tier is equal to or higher than other
func (t SubscriptionTier) AtLeast(other SubscriptionTier) bool {
	return tierRank[t] >= tierRank[other]
}

// Valid returns true for a known tier value
func (t SubscriptionTier) Valid() bool {
	_, ok := tierRank[t]
	return ok
}

// School represents a tenant in the multi-tenant system. Each school is
// reached through its own subdomain and is fully isolated from all others.
type School struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	Name      string           `json:"name" db:"name"`
	Subdomain string           `json:"subdomain" db:"subdomain"` // unique, lowercase DNS label
	Status    SchoolStatus     `json:"status" db:"status"`
	Tier      SubscriptionTier `json:"tier" db:"tier"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the School model
func (School) TableName() string {
	return "schools"
}

// NewSchool creates a new School instance in setup status on the trial tier
func NewSchool(name, subdomain string) *School {
	now := time.Now()
	return &School{
		ID:        uuid.New(),
		Name:      name,
		Subdomain: subdomain,
		Status:    SchoolStatusSetup,
		Tier:      TierTrial,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
