package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// School tests

func TestNewSchool(t *testing.T) {
	school := NewSchool("St Marys College", "stmarys")

	assert.NotEqual(t, uuid.Nil, school.ID)
	assert.Equal(t, "St Marys College", school.Name)
	assert.Equal(t, "stmarys", school.Subdomain)
	assert.Equal(t, SchoolStatusSetup, school.Status)
	assert.Equal(t, TierTrial, school.Tier)
	assert.False(t, school.CreatedAt.IsZero())
	assert.Equal(t, school.CreatedAt, school.UpdatedAt)
}

func TestSchool_TableName(t *testing.T) {
	assert.Equal(t, "schools", School{}.TableName())
}

func TestSchoolStatus_Operable(t *testing.T) {
	tests := []struct {
		name   string
		status SchoolStatus
		want   bool
	}{
		{"active", SchoolStatusActive, true},
		{"setup", SchoolStatusSetup, true},
		{"suspended", SchoolStatusSuspended, false},
		{"inactive", SchoolStatusInactive, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.Operable())
		})
	}
}

func TestSchoolStatus_Valid(t *testing.T) {
	for _, s := range []SchoolStatus{SchoolStatusActive, SchoolStatusSetup, SchoolStatusSuspended, SchoolStatusInactive} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, SchoolStatus("frozen").Valid())
	assert.False(t, SchoolStatus("").Valid())
}

func TestSubscriptionTier_AtLeast(t *testing.T) {
	tests := []struct {
		name  string
		tier  SubscriptionTier
		other SubscriptionTier
		want  bool
	}{
		{"trial below basic", TierTrial, TierBasic, false},
		{"basic at least trial", TierBasic, TierTrial, true},
		{"basic at least basic", TierBasic, TierBasic, true},
		{"professional below enterprise", TierProfessional, TierEnterprise, false},
		{"enterprise at least everything", TierEnterprise, TierTrial, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tier.AtLeast(tt.other))
		})
	}
}

func TestSubscriptionTier_Valid(t *testing.T) {
	for _, tier := range []SubscriptionTier{TierTrial, TierBasic, TierProfessional, TierEnterprise} {
		assert.True(t, tier.Valid(), string(tier))
	}
	assert.False(t, SubscriptionTier("platinum").Valid())
}

// User tests

func TestNewUser(t *testing.T) {
	schoolID := uuid.New()

	user := NewUser(schoolID, "head@stmarys.ac.zw", "$2a$10$hash", RoleSchoolAdmin)

	assert.NotEqual(t, uuid.Nil, user.ID)
	require.NotNil(t, user.SchoolID)
	assert.Equal(t, schoolID, *user.SchoolID)
	assert.Equal(t, "head@stmarys.ac.zw", user.Email)
	assert.Equal(t, RoleSchoolAdmin, user.Role)
	assert.NotNil(t, user.Permissions)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestNewPlatformAdmin(t *testing.T) {
	user := NewPlatformAdmin("ops@oneclass.ac.zw", "$2a$10$hash")

	assert.Nil(t, user.SchoolID)
	assert.Equal(t, RolePlatformAdmin, user.Role)
	assert.True(t, user.IsPlatformAdmin())
	assert.Equal(t, uuid.Nil, user.SchoolIDOrNil())
}

func TestUser_SchoolIDOrNil(t *testing.T) {
	schoolID := uuid.New()
	staff := NewUser(schoolID, "t@stmarys.ac.zw", "h", RoleTeacher)
	assert.Equal(t, schoolID, staff.SchoolIDOrNil())
	assert.False(t, staff.IsPlatformAdmin())
}

func TestUserRole_Valid(t *testing.T) {
	for _, role := range []UserRole{RolePlatformAdmin, RoleSchoolAdmin, RoleTeacher, RoleBursar, RoleClerk} {
		assert.True(t, role.Valid(), string(role))
	}
	assert.False(t, UserRole("superuser").Valid())
}

func TestUser_JSONMarshaling(t *testing.T) {
	user := NewUser(uuid.New(), "head@stmarys.ac.zw", "$2a$10$supersecret", RoleSchoolAdmin)

	data, err := json.Marshal(user)
	require.NoError(t, err)

	// The password hash must never serialize.
	assert.NotContains(t, string(data), "supersecret")
	assert.NotContains(t, string(data), "password_hash")
}

// Module tests

func TestDefaultModules(t *testing.T) {
	defaults := DefaultModules()

	assert.NotEmpty(t, defaults)
	assert.Equal(t, []string{ModuleSIS, ModuleFinance, ModuleAcademic}, defaults)
	for _, m := range defaults {
		assert.True(t, IsKnownModule(m), m)
	}
}

func TestIsKnownModule(t *testing.T) {
	for _, m := range KnownModules {
		assert.True(t, IsKnownModule(m), m)
	}
	assert.False(t, IsKnownModule("astrology"))
	assert.False(t, IsKnownModule(""))
}

// Student tests

func TestNewStudent(t *testing.T) {
	schoolID := uuid.New()

	student := NewStudent(schoolID, "Tariro", "Moyo", "STM-2026-0001", "Form 2")

	assert.NotEqual(t, uuid.Nil, student.ID)
	assert.Equal(t, schoolID, student.SchoolID)
	assert.Equal(t, "Tariro", student.FirstName)
	assert.Equal(t, "Moyo", student.LastName)
	assert.Equal(t, "STM-2026-0001", student.AdmissionNumber)
	assert.Equal(t, "Form 2", student.Level)
	assert.False(t, student.CreatedAt.IsZero())
}

func TestStudent_TableName(t *testing.T) {
	assert.Equal(t, "students", Student{}.TableName())
}

// Invoice tests

func TestNewInvoice(t *testing.T) {
	schoolID := uuid.New()
	studentID := uuid.New()
	due := time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)

	invoice := NewInvoice(schoolID, studentID, "2026-T1", 25000, "ZWG", due)

	assert.NotEqual(t, uuid.Nil, invoice.ID)
	assert.Equal(t, schoolID, invoice.SchoolID)
	assert.Equal(t, studentID, invoice.StudentID)
	assert.Equal(t, "2026-T1", invoice.Term)
	assert.Equal(t, int64(25000), invoice.AmountCents)
	assert.Equal(t, "ZWG", invoice.Currency)
	assert.Equal(t, InvoiceStatusPending, invoice.Status)
	assert.Equal(t, due, invoice.DueDate)
}

func TestNewInvoice_DefaultCurrency(t *testing.T) {
	invoice := NewInvoice(uuid.New(), uuid.New(), "2026-T1", 25000, "", time.Now())
	assert.Equal(t, "USD", invoice.Currency)
}

func TestInvoiceStatus_Valid(t *testing.T) {
	for _, s := range []InvoiceStatus{InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusVoid} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, InvoiceStatus("refunded").Valid())
}

// SchoolClass tests

func TestNewSchoolClass(t *testing.T) {
	schoolID := uuid.New()

	class := NewSchoolClass(schoolID, "2 Blue", "Form 2", "Mr Dube")

	assert.NotEqual(t, uuid.Nil, class.ID)
	assert.Equal(t, schoolID, class.SchoolID)
	assert.Equal(t, "2 Blue", class.Name)
	assert.Equal(t, "Form 2", class.Level)
	assert.Equal(t, "Mr Dube", class.TeacherName)
}

func TestSchoolClass_TableName(t *testing.T) {
	assert.Equal(t, "school_classes", SchoolClass{}.TableName())
}

// AuditLog tests

func TestNewAuditLog(t *testing.T) {
	schoolID := uuid.New()

	entry := NewAuditLog(schoolID, AuditActionSchoolOnboarded)

	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.Equal(t, schoolID, entry.SchoolID)
	assert.Equal(t, AuditActionSchoolOnboarded, entry.Action)
	assert.Nil(t, entry.ActorID)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestAuditLog_Builders(t *testing.T) {
	schoolID := uuid.New()
	actorID := uuid.New()

	entry := NewAuditLog(schoolID, AuditActionStatusChanged).
		WithActor(actorID).
		WithRequestID("req-42").
		WithDetail(map[string]string{"from": "active", "to": "suspended"})

	require.NotNil(t, entry.ActorID)
	assert.Equal(t, actorID, *entry.ActorID)
	assert.Equal(t, "req-42", entry.RequestID)

	var detail map[string]string
	require.NoError(t, json.Unmarshal(entry.Detail, &detail))
	assert.Equal(t, "suspended", detail["to"])
}

func TestAuditLog_TableName(t *testing.T) {
	assert.Equal(t, "audit_logs", AuditLog{}.TableName())
}
