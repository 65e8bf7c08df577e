package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/circulation/internal/tasks"
)

// AuditCleanupSchedule runs the audit log cleanup daily at 03:00.
const AuditCleanupSchedule = "0 3 * * *"

// TaskEnqueuer puts a task on the background queue.
type TaskEnqueuer interface {
	Enqueue(task backlite.Task) (string, error)
}

// ScheduleAuditor records scheduler activity.
type ScheduleAuditor interface {
	LogSchedule(action, description string, err error)
}

// Config controls which jobs the scheduler registers.
type Config struct {
	Schedule           string // Cron format: "0 6 * * *" = daily at 06:00
	AuditRetentionDays int    // 0 disables the audit cleanup job
}

// OverdueScanScheduler enqueues the overdue scan (and audit cleanup) on a cron schedule.
type OverdueScanScheduler struct {
	enqueuer TaskEnqueuer
	auditor  ScheduleAuditor
	config   Config

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

// NewOverdueScanScheduler creates a new scheduler instance
func NewOverdueScanScheduler(enqueuer TaskEnqueuer, auditor ScheduleAuditor, cfg Config) *OverdueScanScheduler {
	return &OverdueScanScheduler{
		enqueuer: enqueuer,
		auditor:  auditor,
		config:   cfg,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// ValidateSchedule checks a five field cron expression.
func ValidateSchedule(schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}
	return nil
}

// Start registers the jobs and starts the cron loop. It stops on its own
// when ctx is cancelled.
func (s *OverdueScanScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateSchedule(s.config.Schedule); err != nil {
		return err
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.enqueueOverdueScan("schedule")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule overdue scan: %w", err)
	}
	s.entryID = entryID

	if s.config.AuditRetentionDays > 0 {
		if _, err := s.cron.AddFunc(AuditCleanupSchedule, s.enqueueAuditCleanup); err != nil {
			return fmt.Errorf("failed to schedule audit cleanup: %w", err)
		}
	}

	s.cron.Start()
	s.isRunning = true

	log.Printf("Overdue scan scheduler: started with schedule '%s'. Next run: %v",
		s.config.Schedule, s.nextRunLocked())

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler
func (s *OverdueScanScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	log.Printf("Overdue scan scheduler: stopped")
}

// RunNow enqueues an overdue scan immediately and returns its task ID.
func (s *OverdueScanScheduler) RunNow(trigger string) (string, error) {
	return s.enqueueOverdueScan(trigger)
}

// IsRunning returns whether the scheduler is active
func (s *OverdueScanScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next scan will be enqueued
func (s *OverdueScanScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	next := s.nextRunLocked()
	if next.IsZero() {
		return nil
	}
	return &next
}

func (s *OverdueScanScheduler) nextRunLocked() time.Time {
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			return entry.Next
		}
	}
	return time.Time{}
}

func (s *OverdueScanScheduler) enqueueOverdueScan(trigger string) (string, error) {
	id, err := s.enqueuer.Enqueue(tasks.OverdueScanTask{Trigger: trigger})
	if err != nil {
		log.Printf("Overdue scan scheduler: failed to enqueue scan: %v", err)
		s.logAudit("overdue_scan_enqueue", "Failed to enqueue overdue scan", err)
		return "", err
	}
	log.Printf("Overdue scan scheduler: enqueued scan %s (%s)", id, trigger)
	s.logAudit("overdue_scan_enqueue", fmt.Sprintf("Enqueued overdue scan %s (%s)", id, trigger), nil)
	return id, nil
}

func (s *OverdueScanScheduler) enqueueAuditCleanup() {
	id, err := s.enqueuer.Enqueue(tasks.CleanupAuditEventsTask{RetentionDays: s.config.AuditRetentionDays})
	if err != nil {
		log.Printf("Overdue scan scheduler: failed to enqueue audit cleanup: %v", err)
		s.logAudit("audit_cleanup_enqueue", "Failed to enqueue audit cleanup", err)
		return
	}
	s.logAudit("audit_cleanup_enqueue", "Enqueued audit cleanup "+id, nil)
}

func (s *OverdueScanScheduler) logAudit(action, description string, err error) {
	if s.auditor == nil {
		return
	}
	s.auditor.LogSchedule(action, description, err)
}
