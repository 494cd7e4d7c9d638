// Package audit writes the platform audit trail asynchronously. Producers
// enqueue entries without blocking the request path; a small worker pool
// drains the queue into storage.
package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oneclass/platform/models"
	"github.com/oneclass/platform/repositories"
)

// Service handles asynchronous audit logging
type Service struct {
	auditRepo   repositories.AuditRepository
	logger      *zap.Logger
	entryChan   chan *models.AuditLog
	workerCount int
	bufferSize  int
	wg          sync.WaitGroup
	started     bool
	mu          sync.Mutex
}

// Config holds configuration for the audit Service
type Config struct {
	BufferSize  int // Size of the entry buffer channel
	WorkerCount int // Number of concurrent workers
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:  1000,
		WorkerCount: 2,
	}
}

// NewService creates a new audit Service instance
func NewService(auditRepo repositories.AuditRepository, logger *zap.Logger, config Config) *Service {
	return &Service{
		auditRepo:   auditRepo,
		logger:      logger,
		entryChan:   make(chan *models.AuditLog, config.BufferSize),
		workerCount: config.WorkerCount,
		bufferSize:  config.BufferSize,
	}
}

// Start starts the background workers
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("audit service already started")
	}

	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.started = true
	s.logger.Info("started audit service",
		zap.Int("worker_count", s.workerCount),
		zap.Int("buffer_size", s.bufferSize))

	return nil
}

// Stop gracefully stops the audit service.
// Waits for all pending entries to be written.
func (s *Service) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return fmt.Errorf("audit service not started")
	}
	s.started = false
	s.mu.Unlock()

	s.logger.Info("stopping audit service", zap.Int("pending_entries", len(s.entryChan)))

	// No more entries will be accepted
	close(s.entryChan)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("audit service stopped gracefully")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("audit service stop timeout after %v", timeout)
	}
}

// Record enqueues an audit entry without blocking. When the buffer is full
// the entry is dropped with a warning: the audit trail is best-effort and
// must never stall a request.
func (s *Service) Record(entry *models.AuditLog) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return fmt.Errorf("audit service not started")
	}
	s.mu.Unlock()

	select {
	case s.entryChan <- entry:
		return nil
	default:
		s.logger.Warn("audit entry buffer full, dropping entry",
			zap.String("action", string(entry.Action)),
			zap.String("school_id", entry.SchoolID.String()))
		return fmt.Errorf("audit entry buffer full")
	}
}

// worker drains entries from the channel into storage
func (s *Service) worker(id int) {
	defer s.wg.Done()

	s.logger.Debug("audit worker started", zap.Int("worker_id", id))

	for entry := range s.entryChan {
		if err := s.writeEntry(entry); err != nil {
			s.logger.Error("failed to write audit entry",
				zap.Int("worker_id", id),
				zap.Error(err),
				zap.String("action", string(entry.Action)),
				zap.String("school_id", entry.SchoolID.String()))
		}
	}

	s.logger.Debug("audit worker stopped", zap.Int("worker_id", id))
}

// writeEntry writes a single audit entry with its own timeout, detached
// from the originating request's context.
func (s *Service) writeEntry(entry *models.AuditLog) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.auditRepo.Insert(ctx, entry)
}

// Stats represents audit service statistics
type Stats struct {
	BufferSize     int
	PendingEntries int
	WorkerCount    int
	Started        bool
}

// GetStats returns statistics about the audit service
func (s *Service) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		BufferSize:     s.bufferSize,
		PendingEntries: len(s.entryChan),
		WorkerCount:    s.workerCount,
		Started:        s.started,
	}
}

// Convenience methods for recording common events

// RecordSchoolOnboarded records a school registration. A nil actor means
// self-service registration rather than a platform admin action.
func (s *Service) RecordSchoolOnboarded(school *models.School, actorID *uuid.UUID, requestID string) error {
	entry := models.NewAuditLog(school.ID, models.AuditActionSchoolOnboarded).
		WithRequestID(requestID).
		WithDetail(map[string]interface{}{
			"name":      school.Name,
			"subdomain": school.Subdomain,
			"tier":      school.Tier,
		})
	if actorID != nil {
		entry = entry.WithActor(*actorID)
	}
	return s.Record(entry)
}

// RecordStatusChanged records a school status transition
func (s *Service) RecordStatusChanged(school *models.School, actorID uuid.UUID, from, to models.SchoolStatus, requestID string) error {
	entry := models.NewAuditLog(school.ID, models.AuditActionStatusChanged).
		WithActor(actorID).
		WithRequestID(requestID).
		WithDetail(map[string]interface{}{
			"from": from,
			"to":   to,
		})
	return s.Record(entry)
}

// RecordTierChanged records a subscription tier change
func (s *Service) RecordTierChanged(school *models.School, actorID uuid.UUID, from, to models.SubscriptionTier, requestID string) error {
	entry := models.NewAuditLog(school.ID, models.AuditActionTierChanged).
		WithActor(actorID).
		WithRequestID(requestID).
		WithDetail(map[string]interface{}{
			"from": from,
			"to":   to,
		})
	return s.Record(entry)
}

// RecordModulesChanged records a module configuration change
func (s *Service) RecordModulesChanged(school *models.School, actorID uuid.UUID, modules []string, requestID string) error {
	entry := models.NewAuditLog(school.ID, models.AuditActionModulesChanged).
		WithActor(actorID).
		WithRequestID(requestID).
		WithDetail(map[string]interface{}{
			"modules": modules,
		})
	return s.Record(entry)
}

// RecordUserCreated records a user account creation
func (s *Service) RecordUserCreated(schoolID uuid.UUID, user *models.User, actorID *uuid.UUID, requestID string) error {
	entry := models.NewAuditLog(schoolID, models.AuditActionUserCreated).
		WithRequestID(requestID).
		WithDetail(map[string]interface{}{
			"user_id": user.ID,
			"email":   user.Email,
			"role":    user.Role,
		})
	if actorID != nil {
		entry = entry.WithActor(*actorID)
	}
	return s.Record(entry)
}

// RecordCrossTenantBlocked records a rejected cross-tenant credential
func (s *Service) RecordCrossTenantBlocked(resolvedSchoolID, sessionSchoolID, userID uuid.UUID, requestID string) error {
	entry := models.NewAuditLog(resolvedSchoolID, models.AuditActionCrossTenantBlocked).
		WithActor(userID).
		WithRequestID(requestID).
		WithDetail(map[string]interface{}{
			"session_school_id": sessionSchoolID,
		})
	return s.Record(entry)
}
